package coordinator

// SimulationProcessName is the handle name the long-lived simulation
// process is hosted under.
const SimulationProcessName = "simulation"

// AnchorProcess runs once at startup: it locates the simulation
// process in whichever context hosts it and re-parents the handle into
// the registry's persistent root so no future load or unload can
// destroy it. Once anchored it is never re-evaluated. A missing
// process is a warning only; presentation switching does not require
// it to exist.
func (c *Coordinator) AnchorProcess() {
	if c.anchored {
		return
	}
	ctx, handle, ok := c.reg.FindProcess(SimulationProcessName)
	if !ok {
		c.log.Warn("simulation process not found; nothing to anchor")
		return
	}
	if ctx != c.reg.Root() {
		ctx.ReleaseProcess(SimulationProcessName)
		c.reg.Root().HostProcess(SimulationProcessName, handle)
		c.log.Info("simulation process anchored to persistent root", "from", ctx.Name())
	}
	c.anchored = true
	c.record("anchor", "simulation process persistent")
}

// Anchored reports whether the simulation process has been marked
// persistent.
func (c *Coordinator) Anchored() bool { return c.anchored }

// SimulationProcess returns the anchored process handle if present.
func (c *Coordinator) SimulationProcess() (any, bool) {
	_, h, ok := c.reg.FindProcess(SimulationProcessName)
	return h, ok
}
