// Package policy holds the host's standing approval preferences: which action
// kinds may skip the prompt and which are refused outright.
package policy
