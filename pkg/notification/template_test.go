package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

func TestRender_DottedPath(t *testing.T) {
	ctx := map[string]any{"rule_name": "high-cpu", "severity": "warning"}
	got := notification.Render("[{{ severity }}] {{ rule_name }} fired", ctx)
	assert.Equal(t, "[warning] high-cpu fired", got)
}

func TestRender_UndefinedPathIsEmptyString(t *testing.T) {
	got := notification.Render("value: [{{ does.not.exist }}]", map[string]any{})
	assert.Equal(t, "value: []", got)
}

func TestRender_EachIteratesList(t *testing.T) {
	ctx := map[string]any{
		"triggered_nodes": []any{
			map[string]any{"name": "node-1"},
			map[string]any{"name": "node-2"},
		},
	}
	got := notification.Render("{{#each triggered_nodes as node}}[{{ node.name }}]{{/each}}", ctx)
	assert.Equal(t, "[node-1][node-2]", got)
}

func TestRender_NestedPathInsideEach(t *testing.T) {
	ctx := map[string]any{
		"triggered_nodes": []any{
			map[string]any{"name": "node-1", "metrics": map[string]any{"cpuUtilizationPercent": 95.5}},
		},
	}
	got := notification.Render("{{#each triggered_nodes as node}}{{ node.name }}={{ node.metrics.cpuUtilizationPercent }}{{/each}}", ctx)
	assert.Equal(t, "node-1=95.5", got)
}
