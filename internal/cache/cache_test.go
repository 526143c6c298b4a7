package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	failSet bool
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	b, ok := m.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("connection refused")
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func TestKey(t *testing.T) {
	c := NewQueryCache(nil, "crm", time.Minute, nil, nil)
	if got := c.Key(QueryCustomerInfo, "CUST001"); got != "crm:customer-info:CUST001" {
		t.Errorf("Key() = %s", got)
	}
	if got := c.Key(QueryCustomerIDs, ""); got != "crm:customer-ids" {
		t.Errorf("Key() = %s", got)
	}
}

func TestFetchReadThrough(t *testing.T) {
	store := newMemStore()
	c := NewQueryCache(store, "crm", time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (map[string]any, error) {
		calls++
		return map[string]any{"customer_id": "CUST001", "age": 41}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Fetch(ctx, c, QueryCustomerInfo, "CUST001", load)
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if v["customer_id"] != "CUST001" {
			t.Errorf("value = %v", v)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	store := newMemStore()
	c := NewQueryCache(store, "", time.Minute, nil, nil)

	_, err := Fetch(context.Background(), c, QueryCustomerIDs, "", func(context.Context) ([]string, error) {
		return nil, errors.New("upstream down")
	})
	if err == nil {
		t.Fatal("expected loader error")
	}
	if len(store.data) != 0 {
		t.Errorf("error result cached: %v", store.data)
	}
}

func TestFetchBypassesBrokenStore(t *testing.T) {
	store := newMemStore()
	store.failGet, store.failSet = true, true
	c := NewQueryCache(store, "crm", time.Minute, nil, nil)

	v, err := Fetch(context.Background(), c, QueryCustomerIDs, "", func(context.Context) ([]string, error) {
		return []string{"A", "B"}, nil
	})
	if err != nil || !reflect.DeepEqual(v, []string{"A", "B"}) {
		t.Errorf("Fetch() = %v, %v", v, err)
	}
}

func TestFetchWithoutStore(t *testing.T) {
	var c *QueryCache
	v, err := Fetch(context.Background(), c, QueryCustomerIDs, "", func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("Fetch() = %v, %v", v, err)
	}
}

func TestInvalidateUsesTable(t *testing.T) {
	store := newMemStore()
	c := NewQueryCache(store, "crm", time.Minute, nil, nil)
	ctx := context.Background()

	for _, q := range []Query{QueryCustomerInfo, QuerySupportHistory, QueryPurchaseHistory} {
		store.data[c.Key(q, "CUST001")] = []byte(`{}`)
	}
	store.data[c.Key(QuerySupportHistory, "CUST002")] = []byte(`{}`)

	keys := c.Invalidate(ctx, OpAddSupportRecord, "CUST001")

	if !reflect.DeepEqual(keys, []string{"crm:customer-support-history:CUST001"}) {
		t.Errorf("keys = %v", keys)
	}
	if _, ok := store.data["crm:customer-support-history:CUST001"]; ok {
		t.Error("support history not invalidated")
	}
	if _, ok := store.data["crm:customer-info:CUST001"]; !ok {
		t.Error("unrelated query invalidated")
	}
	if _, ok := store.data["crm:customer-support-history:CUST002"]; !ok {
		t.Error("other customer invalidated")
	}

	keys = c.Invalidate(ctx, OpRunAI, "CUST001")
	if !reflect.DeepEqual(keys, []string{"crm:customer-info:CUST001"}) {
		t.Errorf("run-ai keys = %v", keys)
	}
}

func TestLoadInvalidationTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalidation.yaml")
	body := "invalidate:\n  run-ai: [customer-info, customer-purchase-history]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadInvalidationTable(path)
	if err != nil {
		t.Fatalf("LoadInvalidationTable() error: %v", err)
	}
	if !reflect.DeepEqual(table[OpRunAI], []Query{QueryCustomerInfo, QueryPurchaseHistory}) {
		t.Errorf("run-ai = %v", table[OpRunAI])
	}
	if !reflect.DeepEqual(table[OpAddSupportRecord], []Query{QuerySupportHistory}) {
		t.Errorf("defaults not kept: %v", table[OpAddSupportRecord])
	}
}

func TestLoadInvalidationTableRejectsUnknownNames(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"op.yaml":    "invalidate:\n  delete-customer: [customer-info]\n",
		"query.yaml": "invalidate:\n  run-ai: [customer-credit]\n",
		"bad.yaml":   "invalidate: [",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadInvalidationTable(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if table, err := LoadInvalidationTable(""); err != nil || len(table) != 4 {
		t.Errorf("empty path: %v, %v", table, err)
	}
}
