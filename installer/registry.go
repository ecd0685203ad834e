package installer

// StepDef is one static registry entry.
type StepDef struct {
	Key  string
	ID   string
	Name string
}

// ExtraComponentKey identifies the optional AdGuard Home step. It is driven by
// its own routine and never inferred from installer output.
const ExtraComponentKey = "adguard"

// Registry is the canonical, ordered list of installation steps.
var Registry = []StepDef{
	{Key: ExtraComponentKey, ID: "adguard", Name: "AdGuard Home"},
	{Key: "system", ID: "system-check", Name: "System Check"},
	{Key: "dependencies", ID: "dependencies", Name: "Dependencies"},
	{Key: "docker", ID: "docker", Name: "Docker"},
	{Key: "directories", ID: "directories", Name: "Directories"},
	{Key: "services", ID: "services", Name: "Services"},
	{Key: "configuration", ID: "configuration", Name: "Configuration"},
	{Key: "firewall", ID: "firewall", Name: "Firewall"},
	{Key: "autoupdate", ID: "auto-update", Name: "Auto-Update"},
	{Key: "finalize", ID: "finalize", Name: "Finalization"},
}

// StepIndex returns the registry position of key, or -1.
func StepIndex(key string) int {
	for i, def := range Registry {
		if def.Key == key {
			return i
		}
	}
	return -1
}

// initialSteps builds the all-pending step list in registry order.
func initialSteps() []StepState {
	steps := make([]StepState, len(Registry))
	for i, def := range Registry {
		steps[i] = StepState{ID: def.ID, Name: def.Name, Status: StepPending}
	}
	return steps
}
