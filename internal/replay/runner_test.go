package replay

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRewards/internal/model"
	"liquidityRewards/internal/rewards"
)

const (
	providerHex = "0x0000000000000000000000000000000000000001"
	poolHex     = "0x0000000000000000000000000000000000000050"
	reserveHex  = "0x00000000000000000000000000000000000000a1"
	reserve2Hex = "0x00000000000000000000000000000000000000a2"
)

type memSnapshotStore struct {
	snap  model.Snapshot
	ok    bool
	saves int
}

func (m *memSnapshotStore) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	m.snap = snap
	m.ok = true
	m.saves++
	return nil
}

func (m *memSnapshotStore) LoadSnapshot(ctx context.Context) (model.Snapshot, error) {
	return m.snap, nil
}

func writeStream(t *testing.T, records []model.StakeEventRecord) string {
	t.Helper()
	var sb strings.Builder
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal record: %v", err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	return path
}

type replayRig struct {
	clock  *rewards.ManualClock
	book   *CheckpointBook
	issuer *MintLog
	engine *rewards.Engine
	runner *Runner
}

func newReplayRig(cfg Config, store SnapshotStore) *replayRig {
	rig := &replayRig{
		clock:  rewards.NewManualClock(0),
		book:   NewCheckpointBook(),
		issuer: NewMintLog(nil),
	}
	rig.engine = rewards.NewEngine(rig.clock, rewards.Collaborators{
		Issuer:      rig.issuer,
		Checkpoints: rig.book,
	}, nil)
	rig.runner = NewRunner(cfg, rig.engine, rig.clock, rig.book, store, nil)
	return rig
}

func testStream(t0 uint64) []model.StakeEventRecord {
	return []model.StakeEventRecord{
		{
			Seq: 1, Timestamp: t0, Kind: model.StakeEventProgramAdded,
			Pool:          poolHex,
			ReserveTokens: []string{reserveHex, reserve2Hex},
			RewardShares:  []uint32{1_000_000, 0},
			EndTime:       t0 + 8*604800,
			RewardRate:    "1000",
		},
		{
			Seq: 2, Timestamp: t0, Kind: model.StakeEventLiquidityAdded,
			Provider: providerHex, Pool: poolHex, ReserveToken: reserveHex,
			Amount: "1000",
		},
		{
			Seq: 3, Timestamp: t0 + 1000, Kind: model.StakeEventClaim,
			Provider: providerHex,
		},
	}
}

func TestRunnerReplaysStream(t *testing.T) {
	t0 := uint64(1_000_000_000)
	path := writeStream(t, testStream(t0))

	statePath := filepath.Join(t.TempDir(), "state.json")
	store := &memSnapshotStore{}
	rig := newReplayRig(Config{
		BatchSize:  100,
		StateStore: &FileStateStore{Path: statePath},
	}, store)

	if err := rig.runner.Run(context.Background(), path); err != nil {
		t.Fatalf("run: %v", err)
	}

	provider := common.HexToAddress(providerHex)
	if got := rig.issuer.Minted(provider); got.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("minted: got %s, want 1000000", got)
	}
	pool, reserve := common.HexToAddress(poolHex), common.HexToAddress(reserveHex)
	if got := rig.engine.TotalStakedAmount(pool, reserve); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("total staked: %s", got)
	}
	if rig.clock.Now() != t0+1000 {
		t.Fatalf("clock: %d", rig.clock.Now())
	}

	seq, ok, err := (&FileStateStore{Path: statePath}).Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load state: seq=%d ok=%v err=%v", seq, ok, err)
	}
	if seq != 3 {
		t.Fatalf("saved seq: got %d, want 3", seq)
	}
	if store.saves == 0 {
		t.Fatalf("no snapshot saved")
	}
}

// A second session over the same stream restores the snapshot and applies
// nothing, so replayed claims are not minted twice.
func TestRunnerResumeSkipsAppliedEvents(t *testing.T) {
	t0 := uint64(1_000_000_000)
	path := writeStream(t, testStream(t0))
	statePath := filepath.Join(t.TempDir(), "state.json")
	store := &memSnapshotStore{}
	cfg := Config{BatchSize: 100, StateStore: &FileStateStore{Path: statePath}}

	first := newReplayRig(cfg, store)
	if err := first.runner.Run(context.Background(), path); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := newReplayRig(cfg, store)
	if err := second.runner.Run(context.Background(), path); err != nil {
		t.Fatalf("second run: %v", err)
	}

	provider := common.HexToAddress(providerHex)
	if got := second.issuer.Minted(provider); got.Sign() != 0 {
		t.Fatalf("resumed session re-minted: %s", got)
	}

	// Restored state matches the first session's.
	pool, reserve := common.HexToAddress(poolHex), common.HexToAddress(reserveHex)
	if got := second.engine.TotalStakedAmount(pool, reserve); got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("restored total staked: %s", got)
	}
	want, err := first.engine.Rewards(provider)
	if err != nil {
		t.Fatalf("rewards: %v", err)
	}
	got, err := second.engine.Rewards(provider)
	if err != nil {
		t.Fatalf("restored rewards: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Fatalf("restored payable: got %s, want %s", got, want)
	}
}

func TestRunnerRecordsCheckpoints(t *testing.T) {
	t0 := uint64(1_000_000_000)
	records := append(testStream(t0),
		model.StakeEventRecord{
			Seq: 4, Timestamp: t0 + 2000, Kind: model.StakeEventLiquidityRemoved,
			Provider: providerHex, Pool: poolHex, ReserveToken: reserveHex,
			Amount: "1000",
		},
		model.StakeEventRecord{
			Seq: 5, Timestamp: t0 + 2000, Kind: model.StakeEventCheckpoint,
			Provider: providerHex,
		},
	)
	path := writeStream(t, records)

	store := &memSnapshotStore{}
	rig := newReplayRig(Config{BatchSize: 100}, store)
	if err := rig.runner.Run(context.Background(), path); err != nil {
		t.Fatalf("run: %v", err)
	}

	provider := common.HexToAddress(providerHex)
	if got := rig.book.Checkpoint(provider); got != t0+2000 {
		t.Fatalf("checkpoint: got %d, want %d", got, t0+2000)
	}
	if len(store.snap.Checkpoints) != 1 || store.snap.Checkpoints[0].CheckpointTime != t0+2000 {
		t.Fatalf("snapshot checkpoints: %+v", store.snap.Checkpoints)
	}
}

func TestRunnerIgnoresUnknownKinds(t *testing.T) {
	t0 := uint64(1_000_000_000)
	records := []model.StakeEventRecord{
		{Seq: 1, Timestamp: t0, Kind: "fee_accrued"},
		testStream(t0)[0],
	}
	records[1].Seq = 2
	path := writeStream(t, records)

	rig := newReplayRig(Config{BatchSize: 100}, nil)
	if err := rig.runner.Run(context.Background(), path); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !rig.engine.IsParticipating(common.HexToAddress(poolHex)) {
		t.Fatalf("program event after unknown kind was not applied")
	}
}

func TestRunnerFailsOnMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatalf("write stream: %v", err)
	}

	rig := newReplayRig(Config{BatchSize: 100}, nil)
	if err := rig.runner.Run(context.Background(), path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRunnerFailsOnBadApply(t *testing.T) {
	t0 := uint64(1_000_000_000)
	// Removal without any stake violates the engine's arithmetic guards.
	records := []model.StakeEventRecord{
		{
			Seq: 1, Timestamp: t0, Kind: model.StakeEventLiquidityRemoved,
			Provider: providerHex, Pool: poolHex, ReserveToken: reserveHex,
			Amount: "5",
		},
	}
	path := writeStream(t, records)

	rig := newReplayRig(Config{BatchSize: 100}, nil)
	if err := rig.runner.Run(context.Background(), path); err == nil {
		t.Fatalf("expected apply error")
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "nested", "state.json")}

	if _, ok, err := store.Load(context.Background()); err != nil || ok {
		t.Fatalf("load before save: ok=%v err=%v", ok, err)
	}
	if err := store.Save(context.Background(), 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	seq, ok, err := store.Load(context.Background())
	if err != nil || !ok || seq != 42 {
		t.Fatalf("load: seq=%d ok=%v err=%v", seq, ok, err)
	}
}

func TestCheckpointBookKeepsLatest(t *testing.T) {
	book := NewCheckpointBook()
	provider := common.HexToAddress(providerHex)

	book.Set(provider, 100)
	book.Set(provider, 50)
	if got := book.Checkpoint(provider); got != 100 {
		t.Fatalf("checkpoint: got %d, want 100", got)
	}

	snap := book.Snapshot()
	restored := NewCheckpointBook()
	restored.Restore(snap)
	if got := restored.Checkpoint(provider); got != 100 {
		t.Fatalf("restored checkpoint: %d", got)
	}
}
