package storageengine

import "fmt"

// Transaction control forwards to the virtual disk. Rollback additionally
// rebuilds the in-memory catalog and tree handles: the discarded metadata
// buffer may have carried table creations, root moves, or counter advances
// that never reached the device.

func (se *StorageEngine) execBegin() (Result, error) {
	if err := se.disk.Begin(); err != nil {
		return Result{}, err
	}
	return Result{Status: "Transaction started"}, nil
}

func (se *StorageEngine) execCommit() (Result, error) {
	if err := se.disk.Commit(); err != nil {
		return Result{}, err
	}
	return Result{Status: "Transaction committed"}, nil
}

func (se *StorageEngine) execRollback() (Result, error) {
	if err := se.disk.Rollback(); err != nil {
		return Result{}, err
	}
	if err := se.Refresh(); err != nil {
		return Result{}, fmt.Errorf("rollback: %w", err)
	}
	return Result{Status: "Transaction rolled back"}, nil
}
