// Package todo holds the ordered task list, its persistence to a single
// storage slot, and the single-task edit session.
package todo
