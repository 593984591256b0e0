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

package sql

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// StoreTestSuite exercises the driver-agnostic helpers directly: building
// a real Store needs a live mysql/postgres connection, out of scope here.
type StoreTestSuite struct {
	suite.Suite
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestUpsertQueryPicksDialect() {
	s.Contains(upsertQuery("postgres"), "ON CONFLICT")
	s.Contains(upsertQuery("mysql"), "ON DUPLICATE KEY")
	s.Contains(upsertQuery("sqlite3"), "ON DUPLICATE KEY", "unrecognized drivers fall back to the mysql dialect")
}

func (s *StoreTestSuite) TestHasTag() {
	s.True(hasTag([]string{"team:eng", "region:eu"}, "region:eu"))
	s.False(hasTag([]string{"team:eng"}, "region:eu"))
	s.False(hasTag(nil, "region:eu"))
}

func (s *StoreTestSuite) TestJoinTags() {
	s.Equal("", joinTags(nil))
	s.Equal("team:eng", joinTags([]string{"team:eng"}))
	s.Equal("team:eng,region:eu", joinTags([]string{"team:eng", "region:eu"}))
}
