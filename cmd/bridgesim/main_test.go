package main

import (
	"strings"
	"testing"

	"github.com/wippyai/jni-bridge/foreign"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/hostsim"
	"github.com/wippyai/jni-bridge/symbols"
)

func TestRenderSlots(t *testing.T) {
	slots := []symbols.Slot{
		{Name: "Object", Target: "java/lang/Object", Kind: foreign.KindClass, Ref: foreign.NewClass(0x10)},
		{Name: "Point(II)", Target: "android/graphics/Point.<init>(II)V", Kind: foreign.KindConstructor},
	}
	out := renderSlots(slots, func(host.Raw) string { return "java/lang/Object" }, false)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Symbols (2)") {
		t.Errorf("title = %q", lines[0])
	}
	if !strings.Contains(lines[1], "0x10 java/lang/Object") {
		t.Errorf("class row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "absent") || !strings.HasPrefix(lines[2], "constructor") {
		t.Errorf("constructor row = %q", lines[2])
	}
}

func TestRun(t *testing.T) {
	if !hostsim.Supported() {
		t.Skip("simulated host threads not supported")
	}
	opts := options{
		manifest: "../../testdata/thirteen.yaml",
		version:  "1.8",
		logLevel: "error",
		cycles:   3,
		threads:  4,
		quiet:    true,
	}
	if err := run(opts); err != nil {
		t.Fatal(err)
	}

	opts.failClass = "android/view/Display"
	if err := run(opts); err == nil {
		t.Fatal("expected attach failure")
	}
}
