package value

// Object is an insertion-ordered mapping from unique string keys to values.
//
// Setting an existing key replaces its value in place and keeps the key at
// its original position. The zero Object is not usable; call NewObject.
type Object struct {
	keys  []string
	vals  []Value
	index map[string]int
}

// NewObject returns an empty Object with room for capacity entries.
func NewObject(capacity int) *Object {
	return &Object{
		keys:  make([]string, 0, capacity),
		vals:  make([]Value, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

// Len returns the number of entries. A nil Object is empty.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Set stores v under key.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.vals[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	i, ok := o.index[key]
	if !ok {
		return false
	}
	delete(o.index, key)
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	for j := i; j < len(o.keys); j++ {
		o.index[o.keys[j]] = j
	}
	return true
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Range calls fn for each entry in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for i, k := range o.keys {
		if !fn(k, o.vals[i]) {
			return
		}
	}
}

// Equal reports whether both objects hold the same keys with equal values.
// Insertion order is ignored.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	equal := true
	o.Range(func(k string, v Value) bool {
		ov, ok := other.Get(k)
		equal = ok && v.Equal(ov)
		return equal
	})
	return equal
}

// Clone returns a deep copy of o.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject(0)
	}
	c := NewObject(len(o.keys))
	for i, k := range o.keys {
		c.Set(k, o.vals[i].Clone())
	}
	return c
}
