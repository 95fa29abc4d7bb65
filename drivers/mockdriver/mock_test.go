package mockdriver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/drivers/mockdriver"
	"github.com/lammesen/netrust/model"
)

func TestMockSucceedsOnOrdinaryCommands(t *testing.T) {
	d := mockdriver.New()
	res, err := d.Execute(context.Background(), model.Device{ID: "r1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
}

func TestMockFailCommand(t *testing.T) {
	d := mockdriver.New()
	_, err := d.Execute(context.Background(), model.Device{ID: "r1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"fail"}},
	})
	require.ErrorContains(t, err, "simulated failure")
}

func TestMockFailTag(t *testing.T) {
	d := mockdriver.New()
	_, err := d.Execute(context.Background(), model.Device{ID: "r1", Tags: []string{mockdriver.FailTag}}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
	})
	require.Error(t, err)
}

func TestMockTimeoutHonorsContextCancellation(t *testing.T) {
	d := mockdriver.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Execute(ctx, model.Device{ID: "r1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"timeout"}},
	})
	require.Error(t, err)
}
