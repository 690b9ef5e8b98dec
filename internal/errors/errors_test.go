package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "route error",
			code:    "R002",
			wantMsg: "Duplicate route name",
			wantCat: CategoryRoute,
		},
		{
			name:    "navigation error",
			code:    "N001",
			wantMsg: "No route matches path",
			wantCat: CategoryNavigation,
		},
		{
			name:    "view error",
			code:    "V001",
			wantMsg: "View load failed",
			wantCat: CategoryView,
		},
		{
			name:    "unknown error code",
			code:    "X999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "fractals.json")
	if err.Message != `file "fractals.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestFractalsError_Error(t *testing.T) {
	err := New("N002").WithDetail(`name "gallery"`)
	want := `N002: Unknown route name (name "gallery")`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &FractalsError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}

	wrapped := New("V001").Wrap(fmt.Errorf("connection reset"))
	if !strings.HasSuffix(wrapped.Error(), ": connection reset") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

func TestFractalsError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := fmt.Errorf("navigate: %w", New("V001").Wrap(cause))

	if !stderrors.Is(err, New("V001")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("V002")) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if Code(err) != "V001" {
		t.Errorf("Code() = %q, want V001", Code(err))
	}
	if Code(cause) != "" {
		t.Errorf("Code(plain) = %q, want empty", Code(cause))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "V001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	fe := New("R001")
	if FromError(fmt.Errorf("wrap: %w", fe), "V001") != fe {
		t.Error("FromError should return the FractalsError in the chain")
	}

	std := fmt.Errorf("plain")
	result := FromError(std, "V001")
	if result.Wrapped != std {
		t.Error("standard error should be wrapped")
	}
	if result.Code != "V001" {
		t.Errorf("Code = %q, want V001", result.Code)
	}
}

func TestRegister(t *testing.T) {
	Register("X100", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, "X100")
		registryMu.Unlock()
	})

	if got := New("X100").Message; got != "custom" {
		t.Errorf("Message = %q, want custom", got)
	}

	codes := GetAllCodes()
	found := false
	for i, c := range codes {
		if i > 0 && codes[i-1] > c {
			t.Fatalf("codes not sorted: %v", codes)
		}
		if c == "X100" {
			found = true
		}
	}
	if !found {
		t.Error("registered code missing from GetAllCodes")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("R002").
		WithSuggestion("Give each route a unique name").
		Format()

	for _, want := range []string{
		"ERROR R002: Duplicate route name",
		"Two descriptors share a name.",
		"Hint: Give each route a unique name",
		"Learn more: https://fractals.vango.dev/docs/errors/R002",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	out := New("N001").WithDetail("/gallery").Wrap(fmt.Errorf("x")).FormatJSON()

	var decoded map[string]string
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", err)
	}
	if decoded["code"] != "N001" || decoded["detail"] != "/gallery" || decoded["cause"] != "x" {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("aaa bbb ccc ddd", 7)
	if len(lines) != 2 || lines[0] != "aaa bbb" || lines[1] != "ccc ddd" {
		t.Errorf("wrapText = %q", lines)
	}
	if wrapText("   ", 10) != nil {
		t.Error("wrapText of blank text should be nil")
	}
}
