// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"fmt"
	"os"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	badgerconfig "github.com/gachago/v1/internal/config/storage/badger"
	log "github.com/gachago/v1/pkg/interfaces/infrastructure/log"
	interfaces "github.com/gachago/v1/pkg/interfaces/infrastructure/storage"
)

// Store 实现BadgerStore接口
type Store struct {
	db     *badgerdb.DB
	config *badgerconfig.Config
	logger log.Logger
}

// New 创建新的BadgerStore实例
func New(config *badgerconfig.Config, logger log.Logger) (interfaces.BadgerStore, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	store := &Store{
		config: config,
		logger: logger,
	}

	var opts badgerdb.Options

	if config.IsInMemory() {
		// 内存模式：测试与一次性工具使用，数据不落盘
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		// 确保数据目录存在
		dataDir := config.GetPath()
		if dataDir == "" {
			dataDir = "./data/badger"
			logger.Warnf("BadgerDB数据目录路径未配置，使用默认路径: %s", dataDir)
		}

		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)

		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}

		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		opts.MemTableSize = config.GetMemTableSize()

		// 控制缓存占用，避免与进程其余部分争抢内存
		opts.BlockCacheSize = 64 << 20
		opts.IndexCacheSize = 64 << 20
		opts.NumMemtables = 2
		opts.NumCompactors = 2
	}

	// BadgerDB内部日志接入统一日志体系
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("无法打开BadgerDB: %w", err)
	}
	store.db = db

	// 启用自动压缩时启动后台GC例程
	if !config.IsInMemory() && config.IsAutoCompactionEnabled() {
		go store.runValueLogGC()
	}

	logger.Info("BadgerDB存储初始化完成")
	return store, nil
}

// runValueLogGC 周期性运行值日志垃圾回收
func (s *Store) runValueLogGC() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if s.db.IsClosed() {
			return
		}
		// 丢弃比例超过50%的vlog文件才重写
		if err := s.db.RunValueLogGC(0.5); err != nil && err != badgerdb.ErrNoRewrite {
			s.logger.Warnf("BadgerDB值日志GC失败: %v", err)
		}
	}
}

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}

	s.logger.Info("关闭BadgerDB存储...")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}
	return nil
}

// Get 获取指定键的值
// 如果键不存在，返回nil值和nil错误
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("读取键失败: %w", err)
	}
	return value, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("写入键失败: %w", err)
	}
	return nil
}

// SetWithTTL 设置键值对并指定过期时间
// ttl为0表示永不过期
func (s *Store) SetWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if ttl <= 0 {
			return txn.Set(key, value)
		}
		entry := badgerdb.NewEntry(key, value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("写入键失败: %w", err)
	}
	return nil
}

// Delete 删除指定键的值
func (s *Store) Delete(ctx context.Context, key []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("删除键失败: %w", err)
	}
	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	exists := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("检查键失败: %w", err)
	}
	return exists, nil
}

// PrefixScan 按前缀扫描键值对
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	result := make(map[string][]byte)
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("前缀扫描失败: %w", err)
	}
	return result, nil
}

// RunInTransaction 在事务中执行操作
// fn返回错误则事务回滚，否则提交
func (s *Store) RunInTransaction(ctx context.Context, fn func(txn interfaces.Transaction) error) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return fn(&transaction{txn: txn})
	})
}
