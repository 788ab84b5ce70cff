// Package planning runs go-pabt plans against a blackboard.
//
// A State exposes blackboard entries as planning variables, keyed by entry
// name, and holds the actions the planner may choose from. PlanStrategy wraps
// a plan for a set of goal conditions as a tree.Strategy, so a planner can
// sit at any leaf of a decision tree:
//
//	state := planning.NewState(bb)
//	state.RegisterAction(planning.NewActionBuilder("fetch").
//		WithEffect("HasBall", true).
//		WithNode(fetchNode).
//		Build())
//	leaf := tree.NewLeaf("Plan", 0, planning.NewPlanStrategy(state,
//		[]pabt.IConditions{{planning.EqualityCond("HasBall", true)}}))
//
// Set DECISIONCORE_DEBUG_PLANNING=1 to log every variable read and action
// lookup at debug level.
package planning
