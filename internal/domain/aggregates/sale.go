package aggregates

// SaleAggregateContract governs every write that touches a sale and its
// items. Reads needed to enforce lifecycle and discount invariants happen
// inside the aggregate-owned transaction; listing and lookups stay on the
// table repos.
var SaleAggregateContract = Contract{
	Name:             "Sales.Sale",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Root version is the concurrency token; child items never move independently of the root.",
}
