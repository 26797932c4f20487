package ngerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("boom")

	cases := []error{
		&ConfigError{Subject: "rule/high-cpu", Err: sentinel},
		&PlatformTransient{Op: "PatchNode", Err: sentinel},
		&PlatformFatal{Op: "DeletePod", Err: sentinel},
		&MetricUnavailable{Node: "node-1", Metric: "cpu_utilization", Err: sentinel},
		&ChannelError{Channel: "slack", Err: sentinel},
	}

	for _, c := range cases {
		assert.True(t, errors.Is(c, sentinel), c.Error())
		assert.NotEmpty(t, c.Error())
	}
}
