package cache

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Query names a cached upstream read. Per-customer queries are keyed by
// customer ID as well.
type Query string

const (
	QueryCustomerIDs        Query = "customer-ids"
	QueryCustomerInfo       Query = "customer-info"
	QuerySupportHistory     Query = "customer-support-history"
	QueryPurchaseHistory    Query = "customer-purchase-history"
	QuerySocialMediaHistory Query = "customer-social-media-history"
)

var knownQueries = map[Query]bool{
	QueryCustomerIDs:        true,
	QueryCustomerInfo:       true,
	QuerySupportHistory:     true,
	QueryPurchaseHistory:    true,
	QuerySocialMediaHistory: true,
}

// Operation names a successful mutation that makes cached reads stale.
type Operation string

const (
	OpAddSupportRecord     Operation = "add-support-record"
	OpAddPurchaseRecord    Operation = "add-purchase-record"
	OpAddSocialMediaRecord Operation = "add-social-media-record"
	OpRunAI                Operation = "run-ai"
)

var knownOperations = map[Operation]bool{
	OpAddSupportRecord:     true,
	OpAddPurchaseRecord:    true,
	OpAddSocialMediaRecord: true,
	OpRunAI:                true,
}

// InvalidationTable lists, per operation, the queries to drop for the
// affected customer.
type InvalidationTable map[Operation][]Query

func DefaultInvalidationTable() InvalidationTable {
	return InvalidationTable{
		OpAddSupportRecord:     {QuerySupportHistory},
		OpAddPurchaseRecord:    {QueryPurchaseHistory},
		OpAddSocialMediaRecord: {QuerySocialMediaHistory},
		OpRunAI:                {QueryCustomerInfo},
	}
}

type invalidationFile struct {
	Invalidate map[Operation][]Query `yaml:"invalidate"`
}

// LoadInvalidationTable reads overrides from a YAML file of the form
//
//	invalidate:
//	  run-ai: [customer-info, customer-support-history]
//
// Operations absent from the file keep their default entry. An empty path
// returns the defaults.
func LoadInvalidationTable(path string) (InvalidationTable, error) {
	table := DefaultInvalidationTable()
	if path == "" {
		return table, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read invalidation table: %w", err)
	}

	var f invalidationFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse invalidation table %s: %w", path, err)
	}

	for op, queries := range f.Invalidate {
		if !knownOperations[op] {
			return nil, fmt.Errorf("invalidation table %s: unknown operation %q", path, op)
		}
		for _, q := range queries {
			if !knownQueries[q] {
				return nil, fmt.Errorf("invalidation table %s: operation %q lists unknown query %q", path, op, q)
			}
		}
		table[op] = queries
	}

	return table, nil
}
