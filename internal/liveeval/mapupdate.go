package liveeval

// eltTag discriminates the three kinds of a MapEltUpdate.
type eltTag uint8

const (
	eltCreate eltTag = iota
	eltUpdate
	eltDelete
)

// MapEltUpdate describes a change to a single map entry: Create a new entry,
// Update an existing one, or Delete it. The zero value is not a valid
// MapEltUpdate on its own; use CreateElt/UpdateElt/DeleteElt.
type MapEltUpdate[A any] struct {
	tag eltTag
	val A
}

// CreateElt builds a "Create" map element update.
func CreateElt[A any](a A) MapEltUpdate[A] {
	return MapEltUpdate[A]{tag: eltCreate, val: a}
}

// UpdateElt builds an "Update" map element update.
func UpdateElt[A any](a A) MapEltUpdate[A] {
	return MapEltUpdate[A]{tag: eltUpdate, val: a}
}

// DeleteElt builds a "Delete" map element update.
func DeleteElt[A any]() MapEltUpdate[A] {
	return MapEltUpdate[A]{tag: eltDelete}
}

// IsCreate reports whether this is a Create variant.
func (e MapEltUpdate[A]) IsCreate() bool { return e.tag == eltCreate }

// IsDelete reports whether this is a Delete variant.
func (e MapEltUpdate[A]) IsDelete() bool { return e.tag == eltDelete }

// Value returns the carried value and true for Create/Update, or the zero
// value and false for Delete.
func (e MapEltUpdate[A]) Value() (A, bool) {
	if e.tag == eltDelete {
		var zero A
		return zero, false
	}

	return e.val, true
}

// composeElt composes a followed by b on the same key, per the table in
// spec.md §3: Create.Update=Create, Create.Delete=annihilate, Update.Update=
// Update(later), Update.Delete=Delete, Delete.Create=Update. The remaining
// combinations (Create.Create, Update.Create, Delete.Update, Delete.Delete)
// never arise under the parser's create-once/delete-once discipline; they
// fall back to b, the most recent observation.
func composeElt[A any](a, b MapEltUpdate[A]) (MapEltUpdate[A], bool) {
	switch {
	case a.tag == eltCreate && b.tag == eltUpdate:
		return CreateElt(b.val), true

	case a.tag == eltCreate && b.tag == eltDelete:
		return MapEltUpdate[A]{}, false

	case a.tag == eltUpdate && b.tag == eltUpdate:
		return UpdateElt(b.val), true

	case a.tag == eltUpdate && b.tag == eltDelete:
		return DeleteElt[A](), true

	case a.tag == eltDelete && b.tag == eltCreate:
		return UpdateElt(b.val), true

	default:
		return b, true
	}
}

// MapUpdate is a sparse, point-wise update to a map: only keys present here
// change. The nil map is the identity update.
type MapUpdate[K comparable, A any] map[K]MapEltUpdate[A]

// Compose collapses u followed by next into a single equivalent update by
// composing per-key and iterating entries, per spec.md §3.
func (u MapUpdate[K, A]) Compose(next MapUpdate[K, A]) MapUpdate[K, A] {
	out := make(MapUpdate[K, A], len(u)+len(next))
	for k, v := range u {
		out[k] = v
	}

	for k, v := range next {
		if existing, ok := out[k]; ok {
			if composed, keep := composeElt(existing, v); keep {
				out[k] = composed
			} else {
				delete(out, k)
			}
		} else {
			out[k] = v
		}
	}

	return out
}

// Apply applies u to m, returning a new map. m is never mutated in place.
func (u MapUpdate[K, A]) Apply(m map[K]A) map[K]A {
	out := make(map[K]A, len(m))
	for k, v := range m {
		out[k] = v
	}

	for k, e := range u {
		if e.IsDelete() {
			delete(out, k)
			continue
		}

		v, _ := e.Value()
		out[k] = v
	}

	return out
}
