package server

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestCheckAPIVersion(t *testing.T) {
	t.Run("Supported", func(t *testing.T) {
		warnings, err := checkAPIVersion("0.0")
		if err != nil {
			t.Fatalf("Expected 0.0 to be accepted: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("Expected no warnings, got %v", warnings)
		}
	})

	t.Run("Unknown Version", func(t *testing.T) {
		_, err := checkAPIVersion("9.9")
		var verr *VersionError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected VersionError, got %v", err)
		}
		if len(verr.Versions.VersionsSupported) == 0 {
			t.Error("Version error must carry the supported list")
		}
	})

	t.Run("Deprecated Version Warns", func(t *testing.T) {
		supported := []APIVersion{"0.0", "0.1"}
		deprecated := []APIVersion{"0.0"}
		warnings, err := checkAPIVersionAgainst("0.0", supported, deprecated)
		if err != nil {
			t.Fatalf("Deprecated version must still be accepted: %v", err)
		}
		if len(warnings) != 1 || warnings[0].Code != WarnCodeDeprecatedVersion {
			t.Errorf("Expected one deprecation warning, got %v", warnings)
		}
	})
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("Warnings Omitted When Empty", func(t *testing.T) {
		data, err := json.Marshal(Ok("payload"))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if strings.Contains(string(data), "warnings") {
			t.Errorf("Empty warnings must be omitted: %s", data)
		}
	})

	t.Run("Warnings Serialized When Present", func(t *testing.T) {
		resp := Warn("payload", []Warning{{Code: WarnCodeDeprecatedVersion, Message: "old"}})
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), "-32051") {
			t.Errorf("Expected warning code on the wire: %s", data)
		}
	})
}

func TestVersionErrorWire(t *testing.T) {
	verr := &VersionError{Version: "9.9", Versions: SupportedVersions()}
	jerr, err := verr.ToJSONRPCError()
	if err != nil {
		t.Fatalf("ToJSONRPCError failed: %v", err)
	}
	if jerr.Code != ErrCodeInvalidVersion {
		t.Errorf("Expected code %d, got %d", ErrCodeInvalidVersion, jerr.Code)
	}

	var back VersionError
	if err := back.FromJSONRPCError(jerr); err != nil {
		t.Fatalf("FromJSONRPCError failed: %v", err)
	}
	if len(back.Versions.VersionsSupported) != len(supportedVersions) {
		t.Error("Supported versions must survive the wire round trip")
	}
}
