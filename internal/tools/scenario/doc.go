// Package scenario runs Lua-scripted contest scenarios against a crown engine.
//
// A script builds a Scenario of steps and returns it:
//
//	local s = Scenario.new("fee change")
//	s:engine({ admin = "admin", fee = 10 })
//	s:claim("alice", 15)
//	s:pause("admin")
//	s:claim("bob", 20, { expect_error = "CROWN_PAUSED" })
//	s:expect({ holder = "alice", paused = true })
//	return s
//
// Identities "@null" and "@sentinel" resolve to the null identity and the
// engine sentinel. Amounts may be Lua numbers or decimal strings.
package scenario
