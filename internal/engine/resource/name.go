package resource

import (
	"path/filepath"
	"strings"

	"go.trai.ch/pulse/internal/core/domain"
	"go.trai.ch/zerr"
)

// DebugName returns the display name of a resource requested by an operator. An explicit
// name wins. Inline sources are named after the requesting symbol, entry point and slot;
// files after their stem and entry point. Names are advisory and never part of the key.
func DebugName(symbol string, key domain.ResourceKey, slot domain.SlotID, explicit string) (string, error) {
	if name := strings.TrimSpace(explicit); name != "" {
		return name, nil
	}
	if key.Inline {
		return symbol + "(" + key.EntryPoint + ") - " + slot.String(), nil
	}
	if strings.TrimSpace(key.Source) == "" {
		return "", domain.ErrEmptySourcePath
	}
	stem := strings.TrimSuffix(filepath.Base(key.Source), filepath.Ext(key.Source))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", zerr.With(domain.ErrInvalidPath, "path", key.Source)
	}
	return stem + " - " + key.EntryPoint, nil
}

// FallbackName names an entry acquired without a debug name.
func FallbackName(key domain.ResourceKey) string {
	if key.Inline {
		return "inline(" + key.EntryPoint + ")"
	}
	name, err := DebugName("", key, domain.SlotID{}, "")
	if err != nil {
		return key.String()
	}
	return name
}
