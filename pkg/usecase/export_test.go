package usecase

// RiskChanges is exported for testing
var RiskChanges = riskChanges

// RiskQueryKey is exported for testing
var RiskQueryKey = riskQueryKey
