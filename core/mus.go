package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
)

// MUS serializers for the domain types persisted by the storage layer.
// Written against the mus-go serializer primitives; the wire layout is
// versionless, so any field change requires a full snapshot rebuild.

var (
	// NodeMUS serializes Node values.
	NodeMUS = nodeMUS{}
	// EdgeMUS serializes Edge values.
	EdgeMUS = edgeMUS{}
	// EmbeddingRecordMUS serializes EmbeddingRecord values.
	EmbeddingRecordMUS = embeddingRecordMUS{}

	// EdgeSliceMUS serializes adjacency lists of edges.
	EdgeSliceMUS = ord.NewSliceSer[Edge](EdgeMUS)

	tagsSer   = ord.NewSliceSer[string](ord.String)
	vectorSer = ord.NewSliceSer[float32](raw.Float32)
)

type nodeMUS struct{}

func (nodeMUS) Marshal(n Node, bs []byte) (off int) {
	bs[off] = byte(n.Kind)
	off++
	off += ord.String.Marshal(n.ID, bs[off:])
	off += ord.String.Marshal(n.Name, bs[off:])
	off += raw.Float64.Marshal(n.Lat, bs[off:])
	off += raw.Float64.Marshal(n.Lon, bs[off:])
	off += tagsSer.Marshal(n.Tags, bs[off:])
	off += ord.String.Marshal(n.Description, bs[off:])
	off += ord.String.Marshal(n.Mode, bs[off:])
	return
}

func (nodeMUS) Unmarshal(bs []byte) (n Node, off int, err error) {
	if len(bs) < 1 {
		err = ErrTruncatedRecord
		return
	}
	n.Kind = NodeKind(bs[off])
	off++

	var m int
	if n.ID, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Name, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Lat, m, err = raw.Float64.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Lon, m, err = raw.Float64.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Tags, m, err = tagsSer.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Description, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if n.Mode, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	return
}

func (nodeMUS) Size(n Node) int {
	return 1 +
		ord.String.Size(n.ID) +
		ord.String.Size(n.Name) +
		raw.Float64.Size(n.Lat) +
		raw.Float64.Size(n.Lon) +
		tagsSer.Size(n.Tags) +
		ord.String.Size(n.Description) +
		ord.String.Size(n.Mode)
}

func (s nodeMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type edgeMUS struct{}

func (edgeMUS) Marshal(e Edge, bs []byte) (off int) {
	bs[off] = byte(e.Source.Kind)
	off++
	off += ord.String.Marshal(e.Source.ID, bs[off:])
	bs[off] = byte(e.Target.Kind)
	off++
	off += ord.String.Marshal(e.Target.ID, bs[off:])
	bs[off] = byte(e.Kind)
	off++
	off += raw.Float64.Marshal(e.Weight, bs[off:])
	return
}

func (edgeMUS) Unmarshal(bs []byte) (e Edge, off int, err error) {
	if len(bs) < 1 {
		err = ErrTruncatedRecord
		return
	}
	e.Source.Kind = NodeKind(bs[off])
	off++

	var m int
	if e.Source.ID, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if len(bs) < off+1 {
		err = ErrTruncatedRecord
		return
	}
	e.Target.Kind = NodeKind(bs[off])
	off++
	if e.Target.ID, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if len(bs) < off+1 {
		err = ErrTruncatedRecord
		return
	}
	e.Kind = RelKind(bs[off])
	off++
	if e.Weight, m, err = raw.Float64.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	return
}

func (edgeMUS) Size(e Edge) int {
	return 3 +
		ord.String.Size(e.Source.ID) +
		ord.String.Size(e.Target.ID) +
		raw.Float64.Size(e.Weight)
}

func (s edgeMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(r EmbeddingRecord, bs []byte) (off int) {
	off += ord.String.Marshal(r.NodeID, bs[off:])
	off += vectorSer.Marshal(r.Vector, bs[off:])
	return
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (r EmbeddingRecord, off int, err error) {
	var m int
	if r.NodeID, m, err = ord.String.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	if r.Vector, m, err = vectorSer.Unmarshal(bs[off:]); err != nil {
		return
	}
	off += m
	return
}

func (embeddingRecordMUS) Size(r EmbeddingRecord) int {
	return ord.String.Size(r.NodeID) + vectorSer.Size(r.Vector)
}

func (s embeddingRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
