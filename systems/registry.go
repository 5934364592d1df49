package systems

// Phase IDs used by the perf collector and the HUD.
const (
	PhaseGenerate  = "generate"
	PhaseIndexSync = "index_sync"
	PhaseForces    = "forces"
	PhaseIntegrate = "integrate"
	PhaseSweep     = "sweep"
	PhaseApply     = "apply"
	PhaseResponse  = "response"
)

// SystemInfo describes one physics phase for UI display.
type SystemInfo struct {
	ID          string // used for perf tracking
	Name        string
	Description string
	Category    string
}

// SystemRegistry holds metadata about the phases of a physics step.
// The perf tracker and the HUD both key on SystemInfo.ID.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with every phase of a step, in
// execution order.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: PhaseGenerate, Name: "Generate", Description: "Generates tile regions around bodies", Category: "world"})
	r.Register(SystemInfo{ID: PhaseIndexSync, Name: "Index Sync", Description: "Inserts new bodies into the quadtree", Category: "index"})

	r.Register(SystemInfo{ID: PhaseForces, Name: "Forces", Description: "Queues weight and drag", Category: "integration"})
	r.Register(SystemInfo{ID: PhaseIntegrate, Name: "Integrate", Description: "Forces to acceleration to velocity", Category: "integration"})

	r.Register(SystemInfo{ID: PhaseSweep, Name: "Sweep", Description: "Tile sweep and entity narrow phase", Category: "collision"})
	r.Register(SystemInfo{ID: PhaseApply, Name: "Apply", Description: "Writes back bodies and updates the quadtree", Category: "collision"})
	r.Register(SystemInfo{ID: PhaseResponse, Name: "Response", Description: "Runs the entity collision policy", Category: "collision"})
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID, or the ID itself if the
// phase is unknown.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns phases filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all phase IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
