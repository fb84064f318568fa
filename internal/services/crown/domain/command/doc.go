// Package command defines the command envelope and decision contract for the
// crown write path.
//
// Commands carry caller intent: who is calling, what they ask for, and the
// payment or text that goes with it. Deciders turn a command into a Decision
// that either emits events or carries rejections, never both.
package command
