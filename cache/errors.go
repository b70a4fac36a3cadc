package cache

import (
	"github.com/puzzleforge/liveops-cache/errcode"
)

// ModuleCode cache module code (70xxxx)
const ModuleCode = 70

const (
	ErrCodeCacheMiss     = 1
	ErrCodeSerialize     = 2
	ErrCodeDeserialize   = 3
	ErrCodeStoreGet      = 4
	ErrCodeStoreSet      = 5
	ErrCodeStoreDelete   = 6
	ErrCodeConfigInvalid = 7
	ErrCodeNilProducer   = 8
)

var (
	// ErrCacheMiss the key is absent (or expired; the two are indistinguishable)
	ErrCacheMiss = errcode.New(ModuleCode, ErrCodeCacheMiss, "cache", "cache miss")

	// ErrSerialize value serialization failed
	ErrSerialize = errcode.New(ModuleCode, ErrCodeSerialize, "cache", "serialization failed")

	// ErrDeserialize value deserialization failed
	ErrDeserialize = errcode.New(ModuleCode, ErrCodeDeserialize, "cache", "deserialization failed")

	// ErrStoreGet distributed store read failed
	ErrStoreGet = errcode.New(ModuleCode, ErrCodeStoreGet, "cache", "store get failed")

	// ErrStoreSet distributed store write failed
	ErrStoreSet = errcode.New(ModuleCode, ErrCodeStoreSet, "cache", "store set failed")

	// ErrStoreDelete distributed store delete failed
	ErrStoreDelete = errcode.New(ModuleCode, ErrCodeStoreDelete, "cache", "store delete failed")

	// ErrConfigInvalid cache configuration invalid
	ErrConfigInvalid = errcode.New(ModuleCode, ErrCodeConfigInvalid, "cache", "invalid cache configuration")

	// ErrNilProducer GetOrSet called without a producer
	ErrNilProducer = errcode.New(ModuleCode, ErrCodeNilProducer, "cache", "producer cannot be nil")
)
