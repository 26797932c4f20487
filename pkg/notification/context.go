package notification

// NodeMetrics is the per-node metric snapshot embedded in an alert context.
type NodeMetrics struct {
	CPUUtilizationPercent    float64 `json:"cpuUtilizationPercent"`
	MemoryUtilizationPercent float64 `json:"memoryUtilizationPercent"`
	DiskUtilizationPercent   float64 `json:"diskUtilizationPercent"`
	CPULoadRatio             float64 `json:"cpuLoadRatio"`
}

// ProblemPod is one pod observed on a triggered node, capped at 5 per node.
type ProblemPod struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Phase     string `json:"phase"`
}

// TriggeredNode is one node in an alert's fan-out.
type TriggeredNode struct {
	Name        string       `json:"name"`
	Metrics     NodeMetrics  `json:"metrics"`
	ProblemPods []ProblemPod `json:"problem_pods"`
}

// maxProblemPods is the per-node cap on embedded problem pods.
const maxProblemPods = 5

// CapProblemPods truncates pods to the per-node cap. Exported so the
// Control Loop can apply it once when assembling a TriggeredNode.
func CapProblemPods(pods []ProblemPod) []ProblemPod {
	if len(pods) <= maxProblemPods {
		return pods
	}
	return pods[:maxProblemPods]
}

// AlertContext is the full context object assembled per fire and handed to
// a template for rendering.
type AlertContext struct {
	RuleName         string          `json:"rule_name"`
	RuleDescription  string          `json:"rule_description"`
	Severity         string          `json:"severity"`
	TimestampUTCISO  string          `json:"timestamp_utc_iso"`
	TriggeredNodes   []TriggeredNode `json:"triggered_nodes"`
}

// ToMap converts ctx to the generic map the template renderer walks,
// keeping the renderer itself independent of this concrete struct.
func (c AlertContext) ToMap() map[string]any {
	nodes := make([]any, 0, len(c.TriggeredNodes))
	for _, n := range c.TriggeredNodes {
		pods := make([]any, 0, len(n.ProblemPods))
		for _, p := range n.ProblemPods {
			pods = append(pods, map[string]any{
				"namespace": p.Namespace,
				"name":      p.Name,
				"phase":     p.Phase,
			})
		}
		nodes = append(nodes, map[string]any{
			"name": n.Name,
			"metrics": map[string]any{
				"cpuUtilizationPercent":    n.Metrics.CPUUtilizationPercent,
				"memoryUtilizationPercent": n.Metrics.MemoryUtilizationPercent,
				"diskUtilizationPercent":   n.Metrics.DiskUtilizationPercent,
				"cpuLoadRatio":             n.Metrics.CPULoadRatio,
			},
			"problem_pods": pods,
		})
	}
	return map[string]any{
		"rule_name":         c.RuleName,
		"rule_description":  c.RuleDescription,
		"severity":          c.Severity,
		"timestamp_utc_iso": c.TimestampUTCISO,
		"triggered_nodes":   nodes,
	}
}
