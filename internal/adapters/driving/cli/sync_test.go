package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goforscrim/scrimsync/internal/core/domain"
)

// cliMockSyncer implements driving.Syncer for testing.
type cliMockSyncer struct {
	lastChannels []string
	lastMode     domain.SyncMode
	report       *domain.SyncReport
	syncErr      error
	cleaned      int
}

func (m *cliMockSyncer) SyncChannels(_ context.Context, channelIDs []string, mode domain.SyncMode) (*domain.SyncReport, error) {
	m.lastChannels = channelIDs
	m.lastMode = mode
	if m.syncErr != nil {
		return nil, m.syncErr
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.SyncReport{}, nil
}

func (m *cliMockSyncer) Cleanup(context.Context) (int, error) {
	return m.cleaned, nil
}

func setupSyncTest(mock *cliMockSyncer) func() {
	oldSyncer := syncService
	oldConfig := appConfig
	syncService = mock
	appConfig = domain.DefaultConfig()
	appConfig.DiscordToken = "token"
	appConfig.Channels = []string{"111", "222"}
	return func() {
		syncService = oldSyncer
		appConfig = oldConfig
		syncFull = false
	}
}

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync [channel-id...]", syncCmd.Use)
}

func TestSyncCmd_UsesConfiguredChannels(t *testing.T) {
	mock := &cliMockSyncer{report: &domain.SyncReport{Added: 2, Merged: 1}}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand("sync")

	assert.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, mock.lastChannels)
	assert.Equal(t, domain.SyncIncremental, mock.lastMode)
	assert.Contains(t, out, "2 added, 1 merged")
}

func TestSyncCmd_ChannelArguments(t *testing.T) {
	mock := &cliMockSyncer{}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	_, err := executeCommand("sync", "333")

	assert.NoError(t, err)
	assert.Equal(t, []string{"333"}, mock.lastChannels)
}

func TestSyncCmd_FullFlag(t *testing.T) {
	mock := &cliMockSyncer{}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	_, err := executeCommand("sync", "--full")

	assert.NoError(t, err)
	assert.Equal(t, domain.SyncFullWindow, mock.lastMode)
}

func TestSyncCmd_InProgressIsNotAnError(t *testing.T) {
	mock := &cliMockSyncer{syncErr: domain.ErrSyncInProgress}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand("sync")

	assert.NoError(t, err)
	assert.Contains(t, out, "already running")
}

func TestSyncCmd_NoChannelsConfigured(t *testing.T) {
	mock := &cliMockSyncer{}
	cleanup := setupSyncTest(mock)
	defer cleanup()
	appConfig.Channels = nil

	_, err := executeCommand("sync")

	assert.ErrorIs(t, err, domain.ErrConfigMissing)
}

func TestSyncCmd_MissingTokenIsFatal(t *testing.T) {
	mock := &cliMockSyncer{}
	cleanup := setupSyncTest(mock)
	defer cleanup()
	appConfig.DiscordToken = ""

	_, err := executeCommand("sync")

	assert.ErrorIs(t, err, domain.ErrConfigMissing)
	assert.Nil(t, mock.lastChannels, "no sync may start without credentials")
}

func TestSyncCmd_ArgsWorkWithoutConfiguredChannels(t *testing.T) {
	mock := &cliMockSyncer{}
	cleanup := setupSyncTest(mock)
	defer cleanup()
	appConfig.Channels = nil

	_, err := executeCommand("sync", "333")

	assert.NoError(t, err)
	assert.Equal(t, []string{"333"}, mock.lastChannels)
}

func TestCleanupCmd_ReportsCount(t *testing.T) {
	mock := &cliMockSyncer{cleaned: 5}
	cleanup := setupSyncTest(mock)
	defer cleanup()

	out, err := executeCommand("cleanup")

	assert.NoError(t, err)
	assert.Contains(t, out, "Removed 5 expired listing(s).")
}
