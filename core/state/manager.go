package state

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"launchpad/storage"
)

// Manager provides keyed access to module state. Values are RLP encoded and
// stored under the keccak256 hash of the module key.
//
// Mutations issued inside Atomic are staged in an overlay and flushed as a
// single storage batch when the unit succeeds. Writes outside a unit go
// straight to the database.
//
// Manager is not safe for concurrent use; callers serialise access.
type Manager struct {
	db storage.Database

	depth   int
	overlay map[string][]byte
	order   []string
	hooks   []func()
}

var (
	rolePrefix       = []byte("role/")
	roleMemberPrefix = []byte("role-member/")
)

// NewManager creates a state manager backed by the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func kvKey(key []byte) []byte {
	return ethcrypto.Keccak256(key)
}

// Atomic runs fn as one all-or-nothing unit. When fn returns an error every
// write staged by fn is dropped together with the queued commit hooks.
// Nested calls join the enclosing unit.
func (m *Manager) Atomic(fn func() error) error {
	if m == nil {
		return fmt.Errorf("state: manager not configured")
	}
	if m.depth > 0 {
		m.depth++
		defer func() { m.depth-- }()
		return fn()
	}
	m.depth = 1
	m.overlay = make(map[string][]byte)
	m.order = nil
	m.hooks = nil
	defer m.reset()

	if err := fn(); err != nil {
		return err
	}
	if len(m.order) > 0 {
		batch := m.db.NewBatch()
		for _, key := range m.order {
			batch.Put([]byte(key), m.overlay[key])
		}
		if err := batch.Write(); err != nil {
			return fmt.Errorf("state: commit: %w", err)
		}
	}
	hooks := m.hooks
	m.reset()
	for _, hook := range hooks {
		hook()
	}
	return nil
}

func (m *Manager) reset() {
	m.depth = 0
	m.overlay = nil
	m.order = nil
	m.hooks = nil
}

// InAtomic reports whether a unit is currently open.
func (m *Manager) InAtomic() bool {
	return m != nil && m.depth > 0
}

// AfterCommit queues fn until the enclosing unit commits. Outside a unit fn
// runs immediately.
func (m *Manager) AfterCommit(fn func()) {
	if fn == nil {
		return
	}
	if m == nil || m.depth == 0 {
		fn()
		return
	}
	m.hooks = append(m.hooks, fn)
}

func (m *Manager) rawGet(hashed []byte) ([]byte, error) {
	if m.depth > 0 {
		if value, ok := m.overlay[string(hashed)]; ok {
			return value, nil
		}
	}
	value, err := m.db.Get(hashed)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

func (m *Manager) rawPut(hashed, value []byte) error {
	if m.depth == 0 {
		return m.db.Put(hashed, value)
	}
	key := string(hashed)
	if _, exists := m.overlay[key]; !exists {
		m.order = append(m.order, key)
	}
	m.overlay[key] = append([]byte(nil), value...)
	return nil
}

// KVPut stores the provided value under the supplied key using RLP encoding.
// The key is automatically hashed with keccak256.
func (m *Manager) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.rawPut(kvKey(key), encoded)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.rawGet(kvKey(key))
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// KVAppend appends the provided value to the RLP-encoded byte slice list stored
// under the supplied key. Duplicate values are ignored to keep the index
// deterministic.
func (m *Manager) KVAppend(key []byte, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	hashed := kvKey(key)
	data, err := m.rawGet(hashed)
	if err != nil {
		return err
	}
	var list [][]byte
	if len(data) > 0 {
		if err := rlp.DecodeBytes(data, &list); err != nil {
			return err
		}
	}
	for _, existing := range list {
		if bytes.Equal(existing, value) {
			return nil
		}
	}
	list = append(list, append([]byte(nil), value...))
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	return m.rawPut(hashed, encoded)
}

// KVGetList retrieves an RLP-encoded slice stored under the provided key and
// decodes it into the supplied destination slice pointer. When no value is
// present the destination is initialised with an empty slice.
func (m *Manager) KVGetList(key []byte, out interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	data, err := m.rawGet(kvKey(key))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		val := reflect.ValueOf(out)
		if val.Kind() != reflect.Ptr || val.IsNil() {
			return fmt.Errorf("kv: destination must be a non-nil pointer")
		}
		elem := val.Elem()
		if elem.Kind() != reflect.Slice {
			return fmt.Errorf("kv: destination must point to a slice")
		}
		elem.Set(reflect.MakeSlice(elem.Type(), 0, 0))
		return nil
	}
	return rlp.DecodeBytes(data, out)
}

func roleListKey(role string) []byte {
	return append(append([]byte{}, rolePrefix...), role...)
}

func roleMemberKey(role string, addr []byte) []byte {
	buf := make([]byte, 0, len(roleMemberPrefix)+len(role)+1+len(addr))
	buf = append(buf, roleMemberPrefix...)
	buf = append(buf, role...)
	buf = append(buf, '/')
	return append(buf, addr...)
}

// HasRole reports whether addr currently holds role.
func (m *Manager) HasRole(role string, addr []byte) bool {
	var member bool
	ok, err := m.KVGet(roleMemberKey(role, addr), &member)
	return err == nil && ok && member
}

// GrantRole adds addr to role. Granting an existing member is a no-op.
func (m *Manager) GrantRole(role string, addr []byte) error {
	if role == "" || len(addr) == 0 {
		return fmt.Errorf("role: role and address required")
	}
	if err := m.KVPut(roleMemberKey(role, addr), true); err != nil {
		return err
	}
	return m.KVAppend(roleListKey(role), addr)
}

// RevokeRole removes addr from role.
func (m *Manager) RevokeRole(role string, addr []byte) error {
	if role == "" || len(addr) == 0 {
		return fmt.Errorf("role: role and address required")
	}
	return m.KVPut(roleMemberKey(role, addr), false)
}

// RoleMembers lists the current members of role in grant order.
func (m *Manager) RoleMembers(role string) ([][]byte, error) {
	var all [][]byte
	if err := m.KVGetList(roleListKey(role), &all); err != nil {
		return nil, err
	}
	members := make([][]byte, 0, len(all))
	for _, addr := range all {
		if m.HasRole(role, addr) {
			members = append(members, addr)
		}
	}
	return members, nil
}
