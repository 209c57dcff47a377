package adapter_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/logger"
	"github.com/satenders/tender-indexer/internal/mocks"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func TestConnectWithRetryFirstAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	nc := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(nc, js, nil)

	gotNC, gotJS, err := adapter.ConnectWithRetry(natsJS, "nats://localhost:4222", 5*time.Second)
	require.NoError(t, err)
	assert.Same(t, nc, gotNC)
	assert.Same(t, js, gotJS)
}

func TestConnectWithRetryRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	nc := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)
	gomock.InOrder(
		natsJS.EXPECT().
			Connect(gomock.Any(), gomock.Any()).
			Return(nil, nil, errors.New("connection refused")),
		natsJS.EXPECT().
			Connect(gomock.Any(), gomock.Any()).
			Return(nc, js, nil),
	)

	gotNC, gotJS, err := adapter.ConnectWithRetry(natsJS, "nats://localhost:4222", 10*time.Second)
	require.NoError(t, err)
	assert.Same(t, nc, gotNC)
	assert.Same(t, js, gotJS)
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("connection refused")).
		MinTimes(1)

	nc, js, err := adapter.ConnectWithRetry(natsJS, "nats://localhost:4222", 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, nc)
	assert.Nil(t, js)
}
