// Package integration contains end-to-end integration tests for VigilGo.
// They exercise the full in-process stack in memory mode: HTTP API, queue,
// tracker, scheduler, and dispatch.
package integration

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "VigilGo Integration Suite")
}
