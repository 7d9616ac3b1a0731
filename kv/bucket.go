// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	// the result must not alias pooled memory, since putters such as leveldb batches keep it.
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Get(buf.k)
		},
		func(key []byte) (bool, error) {
			buf := bufPool.Get().(*buf)
			defer bufPool.Put(buf)
			buf.k = append(append(buf.k[:0], b...), key...)

			return src.Has(buf.k)
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error {
			return src.Put(b.key(key), val)
		},
		func(key []byte) error {
			return src.Delete(b.key(key))
		},
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		NewBatchFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Batch {
			batch := src.NewBatch()
			return &struct {
				Putter
				LenFunc
				WriteFunc
			}{
				b.NewPutter(batch),
				batch.Len,
				batch.Write,
			}
		},
		func(r Range) Iterator {
			r.Start = b.key(r.Start)
			if len(r.Limit) == 0 {
				r.Limit = PrefixRange([]byte(b)).Limit
			} else {
				r.Limit = b.key(r.Limit)
			}
			iter := src.Iterate(r)
			return &struct {
				NextFunc
				KeyFunc
				ValueFunc
				ReleaseFunc
				ErrorFunc
			}{
				iter.Next,
				// strip the bucket
				func() []byte { return iter.Key()[len(b):] },
				iter.Value,
				iter.Release,
				iter.Error,
			}
		},
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
