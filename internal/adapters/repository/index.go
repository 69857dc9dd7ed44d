package repository

import (
	"github.com/cespare/xxhash/v2"

	"github.com/okian/fsrfilter/internal/domain/model"
)

// vetoIndex orders vetoed events by photon pt DESC, then event id ASC.
// It is a treap: BST on that ordering, heap on a hash-derived priority.
type vetoIndex struct {
	root *node
}

type node struct {
	id    string
	pt    float64
	v     model.Verdict
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aPt, aID) ranks ahead of (bPt, bID).
func before(aPt float64, aID string, bPt float64, bID string) bool {
	if aPt != bPt {
		return aPt > bPt
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, v model.Verdict) *node { //nolint:gocritic // verdicts are stored by value
	id, pt := v.EventID, v.VetoPt
	if n == nil {
		return &node{id: id, pt: pt, v: v, prio: xxhash.Sum64String(id), size: 1}
	}
	if before(pt, id, n.pt, n.id) {
		n.left = insert(n.left, v)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, v)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, id string, pt float64) *node {
	if n == nil {
		return nil
	}
	switch {
	case pt == n.pt && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, id, pt)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, id, pt)
		}
	case before(pt, id, n.pt, n.id):
		n.left = remove(n.left, id, pt)
	default:
		n.right = remove(n.right, id, pt)
	}
	fix(n)
	return n
}

// collect appends up to limit verdicts in index order.
func collect(n *node, limit int, out *[]model.Verdict) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.v)
	}
	if len(*out) < limit {
		collect(n.right, limit, out)
	}
}

func (x *vetoIndex) add(v model.Verdict)          { x.root = insert(x.root, v) } //nolint:gocritic // by value
func (x *vetoIndex) delete(id string, pt float64) { x.root = remove(x.root, id, pt) }
func (x *vetoIndex) len() int                     { return nsize(x.root) }

func (x *vetoIndex) top(limit int) []model.Verdict {
	out := make([]model.Verdict, 0, min(limit, x.len()))
	collect(x.root, limit, &out)
	return out
}
