package handler

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/luizstacio/fuel-indexer/ingestion"
)

// encodeBatch serializes blocks for the module/host boundary. spec.md §6
// calls the wire format "a length-prefixed binary serialization of
// Vec<BlockData>"; the length prefix is the pointer/length ABI itself
// (abi.go passes the byte count alongside the pointer), so this only
// needs to produce the payload bytes.
func encodeBatch(blocks []ingestion.BlockData) ([]byte, error) {
	return msgpack.Marshal(blocks)
}

// decodeBatch is the host-side inverse of encodeBatch; only the codec
// round-trip test calls it.
func decodeBatch(data []byte) ([]ingestion.BlockData, error) {
	var blocks []ingestion.BlockData
	if err := msgpack.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// msgpackMap and unmsgpackMap (de)serialize one DB row crossing the
// get/put host imports, the same wire format as encodeBatch/decodeBatch.
func msgpackMap(row map[string]any) ([]byte, error) {
	return msgpack.Marshal(row)
}

func unmsgpackMap(data []byte) (map[string]any, error) {
	var row map[string]any
	if err := msgpack.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}
