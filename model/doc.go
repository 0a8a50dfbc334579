// Package model contains the value types exchanged between the simulation
// run orchestrator, its execution units and the caller: the simulation
// configuration, the run request, the unit wire messages and the per-unit and
// aggregated statistics.
//
// All types carry json and yaml tags so that configurations can be loaded
// from documents and unit messages can be logged or shipped across a real
// transport without additional mapping.
package model
