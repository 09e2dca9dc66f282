package iface

import (
	"errors"
	"net"
	"testing"

	"github.com/ardakoroglu/synreach/internal/scan"
)

func TestByIndexUnknownInterface(t *testing.T) {
	_, err := ByIndex(1 << 20)
	if err == nil {
		t.Fatal("expected an error for an implausible interface index")
	}
	if !errors.Is(err, scan.ErrUnknownInterface) {
		t.Errorf("expected scan.ErrUnknownInterface, got %v", err)
	}
}

func TestSrcIP4PreservesV4Form(t *testing.T) {
	ip := net.ParseIP("192.168.1.1")
	got := srcIP4(ip)
	if len(got) != 4 {
		t.Errorf("expected 4-byte form, got %d bytes", len(got))
	}
}
