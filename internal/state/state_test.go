package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

func TestMachine_DefaultsToIdle(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, types.StateIdle, m.State(1))
	assert.True(t, m.Is(1, types.StateIdle))
	_, ok := m.List(1, BulkNumbers)
	assert.False(t, ok)
	_, ok = m.Text(1, SourceFile)
	assert.False(t, ok)
	assert.Empty(t, m.Snapshot(1).Lists)
}

func TestMachine_SetStateMergesContext(t *testing.T) {
	m := NewMachine()
	m.SetState(1, types.StateFileUpload, Text(CheckType, string(types.CheckBulk)))
	m.SetState(1, types.StateWithdrawProcessing, List(WithdrawNumbers, []string{"1234567890"}))

	assert.Equal(t, types.StateWithdrawProcessing, m.State(1))
	ct, ok := m.Text(1, CheckType)
	require.True(t, ok)
	assert.Equal(t, "bulk", ct)
	nums, ok := m.List(1, WithdrawNumbers)
	require.True(t, ok)
	assert.Equal(t, []string{"1234567890"}, nums)

	m.SetState(1, types.StateIdle, Text(CheckType, string(types.CheckSingle)))
	ct, _ = m.Text(1, CheckType)
	assert.Equal(t, "single", ct, "merge overwrites the same key")
}

func TestMachine_ClearContextKeepsMode(t *testing.T) {
	m := NewMachine()
	m.SetState(1, types.StateAdminCommand, Text(AdminAction, string(types.AdminAddPremium)))

	m.ClearContext(1)
	assert.Equal(t, types.StateAdminCommand, m.State(1))
	_, ok := m.Text(1, AdminAction)
	assert.False(t, ok)
}

func TestMachine_ClearStateDropsEverything(t *testing.T) {
	m := NewMachine()
	m.SetState(1, types.StateFileUpload, List(BulkNumbers, []string{"1234567890"}))

	m.ClearState(1)
	assert.Equal(t, types.StateIdle, m.State(1))
	_, ok := m.List(1, BulkNumbers)
	assert.False(t, ok)
}

func TestMachine_ClearKey(t *testing.T) {
	m := NewMachine()
	m.SetList(1, DetectedNumbers, []string{"1234567890"})
	m.SetText(1, DetectedFile, "numbers.txt")
	m.SetText(1, SourceFile, "other.txt")

	m.ClearKey(1, DetectedNumbers, DetectedFile)
	_, ok := m.List(1, DetectedNumbers)
	assert.False(t, ok)
	_, ok = m.Text(1, DetectedFile)
	assert.False(t, ok)
	src, ok := m.Text(1, SourceFile)
	assert.True(t, ok)
	assert.Equal(t, "other.txt", src)

	m.ClearKey(99, SourceFile)
	assert.Equal(t, types.StateIdle, m.State(99))
}

func TestMachine_UserIsolation(t *testing.T) {
	m := NewMachine()
	m.SetState(1, types.StateChannelSetup, List(BulkNumbers, []string{"1234567890"}), Text(SourceFile, "a.txt"))

	assert.Equal(t, types.StateIdle, m.State(2))
	_, ok := m.List(2, BulkNumbers)
	assert.False(t, ok)
	_, ok = m.Text(2, SourceFile)
	assert.False(t, ok)

	m.ClearState(2)
	m.ClearContext(2)
	assert.Equal(t, types.StateChannelSetup, m.State(1))
	src, _ := m.Text(1, SourceFile)
	assert.Equal(t, "a.txt", src)
}

func TestMachine_ReturnsCopies(t *testing.T) {
	m := NewMachine()
	in := []string{"1234567890"}
	m.SetList(1, BulkNumbers, in)
	in[0] = "changed"

	out, _ := m.List(1, BulkNumbers)
	assert.Equal(t, "1234567890", out[0])
	out[0] = "changed"

	snap := m.Snapshot(1)
	assert.Equal(t, []string{"1234567890"}, snap.Lists[BulkNumbers])
}

func TestMachine_ConcurrentUsers(t *testing.T) {
	m := NewMachine()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, types.StateFileUpload, Text(SourceFile, "f"))
			m.SetList(id, BulkNumbers, []string{"1234567890"})
			_ = m.Snapshot(id)
			m.ClearState(id)
		}(i)
	}
	wg.Wait()
	for i := int64(0); i < 50; i++ {
		assert.Equal(t, types.StateIdle, m.State(i))
	}
}
