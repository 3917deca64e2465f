package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityRewards/internal/model"
)

// Store provides Postgres persistence for rewards engine snapshots and
// replay progress.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reward_programs (
			pool TEXT PRIMARY KEY,
			reserve_token0 TEXT NOT NULL,
			reserve_token1 TEXT NOT NULL,
			reward_share0 BIGINT NOT NULL,
			reward_share1 BIGINT NOT NULL,
			start_time BIGINT NOT NULL,
			end_time BIGINT NOT NULL,
			reward_rate NUMERIC NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS pool_rewards_state (
			pool TEXT NOT NULL,
			reserve_token TEXT NOT NULL,
			last_update_time BIGINT NOT NULL,
			reward_per_token NUMERIC NOT NULL,
			total_claimed_rewards NUMERIC NOT NULL,
			total_staked NUMERIC NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (pool, reserve_token)
		);
		CREATE TABLE IF NOT EXISTS provider_rewards_state (
			provider TEXT NOT NULL,
			pool TEXT NOT NULL,
			reserve_token TEXT NOT NULL,
			reward_per_token_snapshot NUMERIC NOT NULL,
			pending_base_rewards NUMERIC NOT NULL,
			total_claimed_rewards NUMERIC NOT NULL,
			effective_staking_time BIGINT NOT NULL,
			base_rewards_debt NUMERIC NOT NULL,
			base_rewards_debt_multiplier BIGINT NOT NULL,
			staked_amount NUMERIC NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (provider, pool, reserve_token)
		);
		CREATE TABLE IF NOT EXISTS provider_last_claim (
			provider TEXT PRIMARY KEY,
			last_claim_time BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS provider_checkpoints (
			provider TEXT PRIMARY KEY,
			checkpoint_time BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS rewards_state (
			name TEXT PRIMARY KEY,
			last_processed_ts BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// SaveSnapshot writes a full engine snapshot. Programs are replaced so an
// explicit removal disappears; reward state rows are only ever upserted,
// zeroed records included.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM reward_programs`)
	for _, prog := range snap.Programs {
		batch.Queue(`
			INSERT INTO reward_programs (
				pool, reserve_token0, reserve_token1, reward_share0, reward_share1,
				start_time, end_time, reward_rate, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		`,
			prog.Pool.Hex(),
			prog.ReserveTokens[0].Hex(),
			prog.ReserveTokens[1].Hex(),
			int64(prog.RewardShares[0]),
			int64(prog.RewardShares[1]),
			int64(prog.StartTime),
			int64(prog.EndTime),
			prog.RewardRate.String(),
		)
	}
	for _, st := range snap.PoolStates {
		batch.Queue(`
			INSERT INTO pool_rewards_state (
				pool, reserve_token, last_update_time, reward_per_token,
				total_claimed_rewards, total_staked, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,now())
			ON CONFLICT (pool, reserve_token)
			DO UPDATE SET
				last_update_time = EXCLUDED.last_update_time,
				reward_per_token = EXCLUDED.reward_per_token,
				total_claimed_rewards = EXCLUDED.total_claimed_rewards,
				total_staked = EXCLUDED.total_staked,
				updated_at = now()
		`,
			st.Pool.Hex(),
			st.ReserveToken.Hex(),
			int64(st.LastUpdateTime),
			st.RewardPerToken.String(),
			st.TotalClaimedRewards.String(),
			st.TotalStaked.String(),
		)
	}
	for _, ps := range snap.ProviderStates {
		batch.Queue(`
			INSERT INTO provider_rewards_state (
				provider, pool, reserve_token, reward_per_token_snapshot,
				pending_base_rewards, total_claimed_rewards, effective_staking_time,
				base_rewards_debt, base_rewards_debt_multiplier, staked_amount, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
			ON CONFLICT (provider, pool, reserve_token)
			DO UPDATE SET
				reward_per_token_snapshot = EXCLUDED.reward_per_token_snapshot,
				pending_base_rewards = EXCLUDED.pending_base_rewards,
				total_claimed_rewards = EXCLUDED.total_claimed_rewards,
				effective_staking_time = EXCLUDED.effective_staking_time,
				base_rewards_debt = EXCLUDED.base_rewards_debt,
				base_rewards_debt_multiplier = EXCLUDED.base_rewards_debt_multiplier,
				staked_amount = EXCLUDED.staked_amount,
				updated_at = now()
		`,
			ps.Provider.Hex(),
			ps.Pool.Hex(),
			ps.ReserveToken.Hex(),
			ps.RewardPerTokenSnapshot.String(),
			ps.PendingBaseRewards.String(),
			ps.TotalClaimedRewards.String(),
			int64(ps.EffectiveStakingTime),
			ps.BaseRewardsDebt.String(),
			int64(ps.BaseRewardsDebtMultiplier),
			ps.StakedAmount.String(),
		)
	}
	for _, claim := range snap.LastClaims {
		batch.Queue(`
			INSERT INTO provider_last_claim (provider, last_claim_time, updated_at)
			VALUES ($1,$2,now())
			ON CONFLICT (provider) DO UPDATE
			SET last_claim_time = EXCLUDED.last_claim_time, updated_at = now()
		`, claim.Provider.Hex(), int64(claim.LastClaimTime))
	}
	for _, cp := range snap.Checkpoints {
		batch.Queue(`
			INSERT INTO provider_checkpoints (provider, checkpoint_time, updated_at)
			VALUES ($1,$2,now())
			ON CONFLICT (provider) DO UPDATE
			SET checkpoint_time = EXCLUDED.checkpoint_time, updated_at = now()
		`, cp.Provider.Hex(), int64(cp.CheckpointTime))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot reads the persisted engine snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	rows, err := s.pool.Query(ctx, `
		SELECT pool, reserve_token0, reserve_token1, reward_share0, reward_share1,
		       start_time, end_time, reward_rate
		FROM reward_programs ORDER BY pool
	`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var pool, reserve0, reserve1, rate string
		var share0, share1, start, end int64
		if err := rows.Scan(&pool, &reserve0, &reserve1, &share0, &share1, &start, &end, &rate); err != nil {
			rows.Close()
			return snap, err
		}
		rewardRate, err := parseBigInt(rate)
		if err != nil {
			rows.Close()
			return snap, fmt.Errorf("program %s: %w", pool, err)
		}
		snap.Programs = append(snap.Programs, model.PoolProgram{
			Pool:          common.HexToAddress(pool),
			ReserveTokens: [2]common.Address{common.HexToAddress(reserve0), common.HexToAddress(reserve1)},
			RewardShares:  [2]uint32{uint32(share0), uint32(share1)},
			StartTime:     uint64(start),
			EndTime:       uint64(end),
			RewardRate:    rewardRate,
		})
	}
	rows.Close()
	if rows.Err() != nil {
		return snap, rows.Err()
	}

	rows, err = s.pool.Query(ctx, `
		SELECT pool, reserve_token, last_update_time, reward_per_token,
		       total_claimed_rewards, total_staked
		FROM pool_rewards_state ORDER BY pool, reserve_token
	`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var pool, reserve, rpt, claimed, staked string
		var lastUpdate int64
		if err := rows.Scan(&pool, &reserve, &lastUpdate, &rpt, &claimed, &staked); err != nil {
			rows.Close()
			return snap, err
		}
		st := model.PoolRewardsState{
			Pool:           common.HexToAddress(pool),
			ReserveToken:   common.HexToAddress(reserve),
			LastUpdateTime: uint64(lastUpdate),
		}
		if st.RewardPerToken, err = parseBigInt(rpt); err != nil {
			rows.Close()
			return snap, err
		}
		if st.TotalClaimedRewards, err = parseBigInt(claimed); err != nil {
			rows.Close()
			return snap, err
		}
		if st.TotalStaked, err = parseBigInt(staked); err != nil {
			rows.Close()
			return snap, err
		}
		snap.PoolStates = append(snap.PoolStates, st)
	}
	rows.Close()
	if rows.Err() != nil {
		return snap, rows.Err()
	}

	rows, err = s.pool.Query(ctx, `
		SELECT provider, pool, reserve_token, reward_per_token_snapshot,
		       pending_base_rewards, total_claimed_rewards, effective_staking_time,
		       base_rewards_debt, base_rewards_debt_multiplier, staked_amount
		FROM provider_rewards_state ORDER BY provider, pool, reserve_token
	`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var provider, pool, reserve, snapVal, pending, claimed, debt, staked string
		var effective, debtMult int64
		if err := rows.Scan(&provider, &pool, &reserve, &snapVal, &pending, &claimed, &effective, &debt, &debtMult, &staked); err != nil {
			rows.Close()
			return snap, err
		}
		ps := model.ProviderRewardsState{
			Provider:                  common.HexToAddress(provider),
			Pool:                      common.HexToAddress(pool),
			ReserveToken:              common.HexToAddress(reserve),
			EffectiveStakingTime:      uint64(effective),
			BaseRewardsDebtMultiplier: uint32(debtMult),
		}
		if ps.RewardPerTokenSnapshot, err = parseBigInt(snapVal); err != nil {
			rows.Close()
			return snap, err
		}
		if ps.PendingBaseRewards, err = parseBigInt(pending); err != nil {
			rows.Close()
			return snap, err
		}
		if ps.TotalClaimedRewards, err = parseBigInt(claimed); err != nil {
			rows.Close()
			return snap, err
		}
		if ps.BaseRewardsDebt, err = parseBigInt(debt); err != nil {
			rows.Close()
			return snap, err
		}
		if ps.StakedAmount, err = parseBigInt(staked); err != nil {
			rows.Close()
			return snap, err
		}
		snap.ProviderStates = append(snap.ProviderStates, ps)
	}
	rows.Close()
	if rows.Err() != nil {
		return snap, rows.Err()
	}

	rows, err = s.pool.Query(ctx, `SELECT provider, last_claim_time FROM provider_last_claim ORDER BY provider`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var provider string
		var ts int64
		if err := rows.Scan(&provider, &ts); err != nil {
			rows.Close()
			return snap, err
		}
		snap.LastClaims = append(snap.LastClaims, model.ProviderLastClaim{
			Provider:      common.HexToAddress(provider),
			LastClaimTime: uint64(ts),
		})
	}
	rows.Close()
	if rows.Err() != nil {
		return snap, rows.Err()
	}

	rows, err = s.pool.Query(ctx, `SELECT provider, checkpoint_time FROM provider_checkpoints ORDER BY provider`)
	if err != nil {
		return snap, err
	}
	for rows.Next() {
		var provider string
		var ts int64
		if err := rows.Scan(&provider, &ts); err != nil {
			rows.Close()
			return snap, err
		}
		snap.Checkpoints = append(snap.Checkpoints, model.ProviderCheckpoint{
			Provider:       common.HexToAddress(provider),
			CheckpointTime: uint64(ts),
		})
	}
	rows.Close()
	return snap, rows.Err()
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM rewards_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rewards_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}
