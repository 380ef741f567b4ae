package badger

import (
	badgerdb "github.com/dgraph-io/badger/v3"
)

// transaction 包装BadgerDB事务，实现storage.Transaction接口
type transaction struct {
	txn *badgerdb.Txn
}

// Get 事务内读取，键不存在时返回nil值和nil错误
func (t *transaction) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if err == badgerdb.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set 事务内写入
func (t *transaction) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

// Delete 事务内删除
func (t *transaction) Delete(key []byte) error {
	return t.txn.Delete(key)
}
