package main

import (
	"context"
	"errors"
	"testing"

	"screenotate/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screenotate", "-capture", "-api-key-path", "/tmp/key"},
			out:  []string{"screenotate", "--capture", "--api-key-path", "/tmp/key"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screenotate", "-capture-copy=true", "-preferences=/tmp/p.yaml"},
			out:  []string{"screenotate", "--capture-copy=true", "--preferences=/tmp/p.yaml"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screenotate", "--capture", "--other", "-x"},
			out:  []string{"screenotate", "--capture", "--other", "-x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--capture-copy", "--api-key-path", "/tmp/key", "--preferences", "/tmp/p.plist"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.captureCopy || opts.capture {
		t.Fatalf("unexpected capture flags %+v", opts)
	}
	if opts.apiKeyPath != "/tmp/key" {
		t.Fatalf("Expected apiKeyPath=/tmp/key, got %q", opts.apiKeyPath)
	}
	if opts.preferences != "/tmp/p.plist" {
		t.Fatalf("Expected preferences=/tmp/p.plist, got %q", opts.preferences)
	}
}

type fakeClient struct {
	delegated bool
	err       error
	req       *singleinstance.Request
}

func (f *fakeClient) TryRunOnce(ctx context.Context, req singleinstance.Request) (bool, string, error) {
	f.req = &req
	return f.delegated, "", f.err
}

func TestHandleRunOnceWithDelegation_Delegated(t *testing.T) {
	client := &fakeClient{delegated: true}
	fallbackCalled := false

	handleRunOnceWithDelegation(singleinstance.Request{CopyMode: true}, client, func() {
		fallbackCalled = true
	})

	if client.req == nil || !client.req.CopyMode {
		t.Fatal("Expected client.TryRunOnce to be called with the copy request")
	}
	if fallbackCalled {
		t.Fatal("Did not expect fallback when delegation succeeds")
	}
}

func TestHandleRunOnceWithDelegation_NoResidentFallback(t *testing.T) {
	client := &fakeClient{delegated: false}
	fallbackCalled := false

	handleRunOnceWithDelegation(singleinstance.Request{}, client, func() {
		fallbackCalled = true
	})

	if client.req == nil {
		t.Fatal("Expected client.TryRunOnce to be called")
	}
	if !fallbackCalled {
		t.Fatal("Expected fallback when no resident is delegated")
	}
}

func TestHandleRunOnceWithDelegation_BusyResidentNoFallback(t *testing.T) {
	client := &fakeClient{delegated: true, err: errors.New("Busy")}
	fallbackCalled := false

	handleRunOnceWithDelegation(singleinstance.Request{}, client, func() {
		fallbackCalled = true
	})

	if fallbackCalled {
		t.Fatal("Did not expect a standalone session when the resident is busy")
	}
}

func TestHandleRunOnceWithDelegation_DelegationErrorFallback(t *testing.T) {
	client := &fakeClient{err: errors.New("dial failed")}
	fallbackCalled := false

	handleRunOnceWithDelegation(singleinstance.Request{}, client, func() {
		fallbackCalled = true
	})

	if !fallbackCalled {
		t.Fatal("Expected fallback when delegation returns an error")
	}
}
