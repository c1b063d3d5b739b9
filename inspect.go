package keel

// ServiceInfo contains diagnostic information about one identifier's local
// registrations.
type ServiceInfo struct {
	ID            string
	Registered    bool
	Registrations int
	Lifecycle     string
	Strategy      string
	Resolved      bool
	Public        bool
	Metadata      map[string]string
}

// Inspect implements Container. Strategy, lifecycle and resolved state
// describe the last registration, which is the one single resolution uses.
func (c *container) Inspect(id ServiceID) ServiceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := ServiceInfo{ID: id.String()}

	regs := c.registry.getAll(id)
	if len(regs) == 0 {
		return info
	}

	last := regs[len(regs)-1]
	info.Registered = true
	info.Registrations = len(regs)
	info.Lifecycle = last.lifecycle.String()
	info.Strategy = last.strategy.String()
	info.Resolved = last.resolved
	info.Public = last.public

	if len(last.metadata) > 0 {
		info.Metadata = make(map[string]string, len(last.metadata))
		for k, v := range last.metadata {
			info.Metadata[k] = v
		}
	}

	return info
}

// Services implements Container.
func (c *container) Services() []ServiceID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.registry.keys()
}

// FindByLifecycle returns info for every identifier whose effective
// registration carries the lifecycle.
func FindByLifecycle(c Container, l Lifecycle) []ServiceInfo {
	var out []ServiceInfo
	for _, id := range c.Services() {
		info := c.Inspect(id)
		if info.Lifecycle == l.String() {
			out = append(out, info)
		}
	}

	return out
}

// FindByStrategy returns info for every identifier whose effective
// registration uses the named creation strategy ("class", "factory", "value"
// or "alias").
func FindByStrategy(c Container, strategy string) []ServiceInfo {
	var out []ServiceInfo
	for _, id := range c.Services() {
		info := c.Inspect(id)
		if info.Strategy == strategy {
			out = append(out, info)
		}
	}

	return out
}
