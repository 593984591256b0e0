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

package cli

import (
	"context"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"

	"github.com/uber/workflow-engine/backend/cassandra"
	"github.com/uber/workflow-engine/backend/memory"
	"github.com/uber/workflow-engine/backend/sql"
	"github.com/uber/workflow-engine/engine"
)

// Config is wfctl's connection file, the CLI analogue of the host
// application Config every backend constructor already takes
// (engine/config.go). Mirrors tools/cli's reliance on a persistence
// connection described by flags/file rather than hardcoded constants.
type Config struct {
	Backend   string          `yaml:"backend"` // "memory", "sql", "cassandra"
	SQL       SQLConfig       `yaml:"sql"`
	Cassandra CassandraConfig `yaml:"cassandra"`
}

// SQLConfig configures backend/sql.
type SQLConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CassandraConfig configures backend/cassandra.
type CassandraConfig struct {
	Hosts    []string `yaml:"hosts"`
	Keyspace string   `yaml:"keyspace"`
}

// LoadConfig reads a wfctl connection file. An empty path defaults to an
// in-memory backend, useful for trying wfctl against nothing but itself.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{Backend: "memory"}, nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Connect builds the engine.Engine the config names.
func (c *Config) Connect(ctx context.Context) (engine.Engine, error) {
	switch c.Backend {
	case "", "memory":
		return memory.New(engine.NewConfig()), nil
	case "sql":
		store, err := sql.Open(c.SQL.Driver, c.SQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		return sql.New(ctx, store, engine.NewConfig())
	case "cassandra":
		store, err := cassandra.Open(cassandra.Config{
			Hosts:    c.Cassandra.Hosts,
			Keyspace: c.Cassandra.Keyspace,
		})
		if err != nil {
			return nil, fmt.Errorf("open cassandra store: %w", err)
		}
		return cassandra.New(ctx, store, engine.NewConfig())
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
