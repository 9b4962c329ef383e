package handler

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	fuelindexer "github.com/luizstacio/fuel-indexer"
)

// Entry points and host imports of spec.md §6's handler-module ABI:
// "exports alloc_fn(u32)->u32, dealloc_fn(u32,u32), a well-known entry
// point handle_events(ptr,len), and the host imports {get, put, delete,
// log} sharing the same pointer/length convention."
const (
	exportAlloc       = "alloc_fn"
	exportDealloc     = "dealloc_fn"
	exportHandleEvent = "handle_events"
	hostModuleName    = "env"
)

// readMemory copies length bytes at ptr out of mod's linear memory.
func readMemory(mod api.Module, ptr, length uint32) ([]byte, error) {
	buf, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("handler: read out of bounds at %d..%d", ptr, ptr+length)
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// writeResult allocates room in mod's memory via its alloc_fn export,
// writes data into it, and returns a packed pointer/length word (high 32
// bits ptr, low 32 bits len) for the caller to hand back across the ABI.
func writeResult(ctx context.Context, mod api.Module, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	alloc := mod.ExportedFunction(exportAlloc)
	if alloc == nil {
		return 0, fmt.Errorf("handler: module has no %s export", exportAlloc)
	}
	res, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	ptr := uint32(res[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("handler: write out of bounds at %d (%d bytes)", ptr, len(data))
	}
	return packPtrLen(ptr, uint32(len(data))), nil
}

// packPtrLen and unpackPtrLen convert between a (ptr, len) pair and the
// single i64 word the get host import returns across the ABI.
func packPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

func unpackPtrLen(word uint64) (ptr, length uint32) {
	return uint32(word >> 32), uint32(word)
}

var abiParamsTableKey = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}
var abiParamsMessage = []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
var abiResultsWord = []api.ValueType{api.ValueTypeI64}
var abiResultsStatus = []api.ValueType{api.ValueTypeI32}
var abiResultsNone []api.ValueType

// buildHostModule registers the get/put/delete/log host imports under
// "env". get, put and delete share the (table_ptr, table_len, key_ptr,
// key_len) pointer/length convention of spec.md §6; log takes
// (msg_ptr, msg_len). The calling module is supplied by wazero on every
// call, but db is captured here, so invoke builds and instantiates a
// fresh host module for each transaction.
func buildHostModule(rt wazero.Runtime, db *DB) wazero.HostModuleBuilder {
	b := rt.NewHostModuleBuilder(hostModuleName)

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			tablePtr, tableLen := uint32(stack[0]), uint32(stack[1])
			idPtr, idLen := uint32(stack[2]), uint32(stack[3])
			stack[0] = hostGet(ctx, mod, db, tablePtr, tableLen, idPtr, idLen)
		}), abiParamsTableKey, abiResultsWord).
		Export("get")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			tablePtr, tableLen := uint32(stack[0]), uint32(stack[1])
			rowPtr, rowLen := uint32(stack[2]), uint32(stack[3])
			stack[0] = uint64(hostPut(ctx, mod, db, tablePtr, tableLen, rowPtr, rowLen))
		}), abiParamsTableKey, abiResultsStatus).
		Export("put")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			tablePtr, tableLen := uint32(stack[0]), uint32(stack[1])
			idPtr, idLen := uint32(stack[2]), uint32(stack[3])
			stack[0] = uint64(hostDelete(ctx, mod, db, tablePtr, tableLen, idPtr, idLen))
		}), abiParamsTableKey, abiResultsStatus).
		Export("delete")

	b.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			msgPtr, msgLen := uint32(stack[0]), uint32(stack[1])
			if msg, err := readMemory(mod, msgPtr, msgLen); err == nil {
				hostLog(string(msg))
			}
		}), abiParamsMessage, abiResultsNone).
		Export("log")

	return b
}

func hostGet(ctx context.Context, mod api.Module, db *DB, tablePtr, tableLen, idPtr, idLen uint32) uint64 {
	table, err := readMemory(mod, tablePtr, tableLen)
	if err != nil {
		return 0
	}
	idBytes, err := readMemory(mod, idPtr, idLen)
	if err != nil {
		return 0
	}
	row, err := db.Get(ctx, string(table), string(idBytes))
	if err != nil || row == nil {
		return 0
	}
	data, err := msgpackMap(row)
	if err != nil {
		return 0
	}
	packed, err := writeResult(ctx, mod, data)
	if err != nil {
		return 0
	}
	return packed
}

func hostPut(ctx context.Context, mod api.Module, db *DB, tablePtr, tableLen, rowPtr, rowLen uint32) uint32 {
	table, err := readMemory(mod, tablePtr, tableLen)
	if err != nil {
		return 1
	}
	rowBytes, err := readMemory(mod, rowPtr, rowLen)
	if err != nil {
		return 1
	}
	row, err := unmsgpackMap(rowBytes)
	if err != nil {
		return 1
	}
	if err := db.Put(ctx, string(table), row); err != nil {
		return 1
	}
	return 0
}

func hostDelete(ctx context.Context, mod api.Module, db *DB, tablePtr, tableLen, idPtr, idLen uint32) uint32 {
	table, err := readMemory(mod, tablePtr, tableLen)
	if err != nil {
		return 1
	}
	idBytes, err := readMemory(mod, idPtr, idLen)
	if err != nil {
		return 1
	}
	if err := db.Delete(ctx, string(table), string(idBytes)); err != nil {
		return 1
	}
	return 0
}

// hostLog receives each message a guest passes to the log import. It is
// a no-op; nothing in this module assigns another function to it.
var hostLog = func(string) {}

// lookupExports resolves the exports a handler module must provide,
// returning MissingHandler if handle_events is absent.
func lookupExports(mod api.Module) (dealloc, handleEvents api.Function, err error) {
	dealloc = mod.ExportedFunction(exportDealloc)
	handleEvents = mod.ExportedFunction(exportHandleEvent)
	if handleEvents == nil {
		return nil, nil, fuelindexer.NewRuntimeError(fuelindexer.MissingHandler, nil)
	}
	return dealloc, handleEvents, nil
}
