// Copyright (c) 2017 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cassandra implements engine/persistence.Store over gocql, one
// partition per process (SPEC_FULL.md section 4.7). Query shape is
// grounded on
// common/persistence/cassandra/cassandraVisibilityPersistence.go's
// template-query-string convention, narrowed to a single processes table
// the way backend/sql narrows its relational schema to one table (see
// DESIGN.md).
package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/uber/workflow-engine/common/persistence/serialization"
	"github.com/uber/workflow-engine/engine"
	"github.com/uber/workflow-engine/engine/persistence"
)

const (
	templateCreateKeyspace = `CREATE KEYSPACE IF NOT EXISTS %s
		WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`

	templateCreateTable = `CREATE TABLE IF NOT EXISTS processes (
		id       text PRIMARY KEY,
		workflow text,
		tag      text,
		data     blob
	)`

	templateInsertProcess = `INSERT INTO processes (id, workflow, tag, data) VALUES (?, ?, ?, ?)`

	templateSelectProcess = `SELECT data FROM processes WHERE id = ?`

	templateDeleteProcess = `DELETE FROM processes WHERE id = ?`

	templateSelectAllProcesses = `SELECT data FROM processes`

	templateSelectProcessesByWorkflow = `SELECT data FROM processes WHERE workflow = ? ALLOW FILTERING`
)

// Config configures a gocql session.
type Config struct {
	Hosts       []string
	Keyspace    string
	Consistency gocql.Consistency
}

// Store is a persistence.Store backed by a Cassandra session.
type Store struct {
	session *gocql.Session
}

var _ persistence.Store = (*Store)(nil)

// Open connects to Cassandra, creating the keyspace/table if absent.
func Open(cfg Config) (*Store, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	if cfg.Consistency != 0 {
		cluster.Consistency = cfg.Consistency
	} else {
		cluster.Consistency = gocql.Quorum
	}

	bootstrap, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: connect: %w", err)
	}
	if err := bootstrap.Query(fmt.Sprintf(templateCreateKeyspace, cfg.Keyspace, 1)).Exec(); err != nil {
		bootstrap.Close()
		return nil, fmt.Errorf("cassandra: create keyspace: %w", err)
	}
	bootstrap.Close()

	cluster.Keyspace = cfg.Keyspace
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: connect to keyspace %s: %w", cfg.Keyspace, err)
	}
	if err := session.Query(templateCreateTable).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("cassandra: create table: %w", err)
	}
	return &Store{session: session}, nil
}

// SaveProcess implements persistence.Store. The tag column stores only the
// first tag for equality filtering (SPEC_FULL section 4.7); additional
// tags still round-trip through the process's serialized data.
func (s *Store) SaveProcess(ctx context.Context, process *engine.Process) error {
	data, err := serialization.MarshalProcess(process)
	if err != nil {
		return err
	}
	firstTag := ""
	if len(process.Tags) > 0 {
		firstTag = process.Tags[0]
	}
	err = s.session.Query(templateInsertProcess, process.ID, process.Workflow, firstTag, data).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("cassandra: save process %s: %w", process.ID, err)
	}
	return nil
}

// LoadProcess implements persistence.Store.
func (s *Store) LoadProcess(ctx context.Context, id string) (*engine.Process, error) {
	var data []byte
	err := s.session.Query(templateSelectProcess, id).WithContext(ctx).Scan(&data)
	if err == gocql.ErrNotFound {
		return nil, engine.NewUnknownProcessError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("cassandra: load process %s: %w", id, err)
	}
	return serialization.UnmarshalProcess(data)
}

// DeleteProcess implements persistence.Store.
func (s *Store) DeleteProcess(ctx context.Context, id string) error {
	if err := s.session.Query(templateDeleteProcess, id).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("cassandra: delete process %s: %w", id, err)
	}
	return nil
}

// ListProcesses implements persistence.Store.
func (s *Store) ListProcesses(ctx context.Context, req engine.ListProcessesRequest) ([]engine.Process, error) {
	var iter *gocql.Iter
	if req.Workflow != "" {
		iter = s.session.Query(templateSelectProcessesByWorkflow, req.Workflow).WithContext(ctx).Iter()
	} else {
		iter = s.session.Query(templateSelectAllProcesses).WithContext(ctx).Iter()
	}

	var out []engine.Process
	var data []byte
	for iter.Scan(&data) {
		p, err := serialization.UnmarshalProcess(data)
		if err != nil {
			iter.Close()
			return nil, err
		}
		if req.Tag == "" || hasTag(p.Tags, req.Tag) {
			out = append(out, *p)
		}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("cassandra: list processes: %w", err)
	}
	return out, nil
}

// Close implements persistence.Store.
func (s *Store) Close() error {
	s.session.Close()
	return nil
}

func hasTag(tags []string, t string) bool {
	for _, candidate := range tags {
		if candidate == t {
			return true
		}
	}
	return false
}
