package checks

// Catalog returns every built-in check in evaluation order: remote
// access first, then perimeter, patching, accounts, file permissions,
// kernel, services and finally the audit subsystem.
func Catalog() []Check {
	return []Check{
		NewSSHRootLoginCheck(),
		NewSSHPasswordAuthCheck(),
		NewSSHEmptyPasswordsCheck(),
		NewFirewallCheck(),
		NewUpdatesCheck(),
		NewEmptyPasswordCheck(),
		NewUIDZeroCheck(),
		NewFilePermissionsCheck(),
		NewKernelParamsCheck(),
		NewUnnecessaryServicesCheck(),
		NewAuditdCheck(),
	}
}

// DefaultRegistry builds a registry holding the full catalog
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range Catalog() {
		// catalog ids are unique so Register cannot fail here
		_ = r.Register(c)
	}
	return r
}
