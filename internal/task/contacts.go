package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

const (
	contactsFile       = "contacts.json"
	contactsSortedFile = "contacts-sorted.json"
)

func opSortContacts() *Operation {
	return &Operation{
		ID:     "sort-contacts",
		Intent: "sort the contacts file by last name then first name and write the sorted list",
		Patterns: [][]string{
			{"sort", "contact"},
			{"contacts-sorted"},
		},
		Run: runSortContacts,
	}
}

func runSortContacts(ctx context.Context, env Env, description string) (Result, error) {
	data, err := env.Sandbox.ReadFile(contactsFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", contactsFile, err)
	}

	var contacts []map[string]any
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", contactsFile, err)
	}

	// Stable keeps ties in input order, so repeat runs over the same
	// input produce byte-identical output.
	sort.SliceStable(contacts, func(i, j int) bool {
		li, lj := stringField(contacts[i], "last_name"), stringField(contacts[j], "last_name")
		if li != lj {
			return li < lj
		}
		return stringField(contacts[i], "first_name") < stringField(contacts[j], "first_name")
	})

	out, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sorted contacts: %w", err)
	}
	if err := env.Sandbox.WriteFile(contactsSortedFile, out); err != nil {
		return nil, fmt.Errorf("write %s: %w", contactsSortedFile, err)
	}

	return Result{"contacts_sorted": len(contacts)}, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
