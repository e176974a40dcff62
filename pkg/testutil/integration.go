package testutil

import (
	"context"
	"os"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// FeedSuite provides a context and a scratch directory to suites that
// validate feeds written to disk.
type FeedSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *FeedSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "gtfs-feed-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *FeedSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		_ = os.RemoveAll(s.tempDir)
	}
	s.T().Logf("feed suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *FeedSuite) Context() context.Context {
	return s.ctx
}

// FeedDir writes files into a fresh directory under the suite's scratch
// directory and returns its path.
func (s *FeedSuite) FeedDir(files map[string]string) string {
	dir, err := os.MkdirTemp(s.tempDir, "dir-*")
	s.Require().NoError(err)
	return WriteFeed(s.T(), dir, files)
}

// FeedZip writes files as a zip archive under the suite's scratch
// directory and returns the archive path.
func (s *FeedSuite) FeedZip(files map[string]string) string {
	dir, err := os.MkdirTemp(s.tempDir, "zip-*")
	s.Require().NoError(err)
	return WriteZipFeed(s.T(), dir, files)
}
