// repository.go: 游戏配置与抽取记录的持久化
//
// 序号计数器的"读取-检查-递增-创建"序列在单个存储事务内完成，
// 任何并发创建都无法交错。
package gacha

import (
	"context"
	"encoding/json"
	"fmt"

	storageInterface "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
	"github.com/gachago/v1/pkg/types"
)

// 存储键
const (
	gameConfigKey = "gacha/config"
	pullKeyPrefix = "gacha/pull/"
)

// Repository 抽取协议的持久化层
type Repository struct {
	store storageInterface.BadgerStore
}

// NewRepository 创建持久化层
func NewRepository(store storageInterface.BadgerStore) *Repository {
	return &Repository{store: store}
}

// GetGameConfig 读取游戏配置，未初始化时返回nil
func (r *Repository) GetGameConfig(ctx context.Context) (*types.GameConfig, error) {
	data, err := r.store.Get(ctx, []byte(gameConfigKey))
	if err != nil {
		return nil, fmt.Errorf("读取游戏配置失败: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var config types.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解码游戏配置失败: %w", err)
	}
	return &config, nil
}

// SaveGameConfig 持久化游戏配置
func (r *Repository) SaveGameConfig(ctx context.Context, config *types.GameConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("编码游戏配置失败: %w", err)
	}
	return r.store.Set(ctx, []byte(gameConfigKey), data)
}

// GetPull 读取抽取记录，不存在时返回nil
func (r *Repository) GetPull(ctx context.Context, id uint64) (*types.Pull, error) {
	data, err := r.store.Get(ctx, pullKey(id))
	if err != nil {
		return nil, fmt.Errorf("读取抽取记录失败: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var pull types.Pull
	if err := json.Unmarshal(data, &pull); err != nil {
		return nil, fmt.Errorf("解码抽取记录失败: %w", err)
	}
	return &pull, nil
}

// SavePull 持久化抽取记录
func (r *Repository) SavePull(ctx context.Context, pull *types.Pull) error {
	data, err := json.Marshal(pull)
	if err != nil {
		return fmt.Errorf("编码抽取记录失败: %w", err)
	}
	return r.store.Set(ctx, pullKey(pull.ID), data)
}

// SavePullTxn 在调用方事务内持久化抽取记录
func (r *Repository) SavePullTxn(txn storageInterface.Transaction, pull *types.Pull) error {
	data, err := json.Marshal(pull)
	if err != nil {
		return fmt.Errorf("编码抽取记录失败: %w", err)
	}
	return txn.Set(pullKey(pull.ID), data)
}

// RunInTransaction 在单个存储事务内执行fn
//
// 状态转换与其触发的余额变更必须一起提交或一起回滚时使用。
func (r *Repository) RunInTransaction(ctx context.Context, fn func(txn storageInterface.Transaction) error) error {
	return r.store.RunInTransaction(ctx, fn)
}

// CreatePullAtomic 在单个事务内检查序号、递增计数器并创建记录
//
// pull.ID必须等于LastPullID+1，否则以InvalidPullId失败且
// 计数器保持不变。
func (r *Repository) CreatePullAtomic(ctx context.Context, pull *types.Pull) error {
	return r.store.RunInTransaction(ctx, func(txn storageInterface.Transaction) error {
		configData, err := txn.Get([]byte(gameConfigKey))
		if err != nil {
			return err
		}
		if configData == nil {
			return ErrGameConfigNotInitialized
		}

		var config types.GameConfig
		if err := json.Unmarshal(configData, &config); err != nil {
			return fmt.Errorf("解码游戏配置失败: %w", err)
		}

		if pull.ID != config.LastPullID+1 {
			return WrapInvalidPullIdError(config.LastPullID+1, pull.ID)
		}

		existing, err := txn.Get(pullKey(pull.ID))
		if err != nil {
			return err
		}
		if existing != nil {
			return WrapInvalidPullIdError(config.LastPullID+1, pull.ID)
		}

		pullData, err := json.Marshal(pull)
		if err != nil {
			return fmt.Errorf("编码抽取记录失败: %w", err)
		}
		if err := txn.Set(pullKey(pull.ID), pullData); err != nil {
			return err
		}

		config.LastPullID = pull.ID
		newConfigData, err := json.Marshal(&config)
		if err != nil {
			return fmt.Errorf("编码游戏配置失败: %w", err)
		}
		return txn.Set([]byte(gameConfigKey), newConfigData)
	})
}

func pullKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", pullKeyPrefix, id))
}
