/*
Package tree implements a resumable behavior tree evaluated once per tick.

# Status

Every node reports Running, Success or Failure from Process. Running means
"call me again next tick": composites keep their cursor and re-enter the same
child. Failure is ordinary control flow, never an error.

# Nodes

A tree is built from composites (Sequence, Selector, PrioritySelector,
RandomSelector), decorators (Inverter, UntilFail) and leaves. Leaves delegate
to a Strategy, the extension point for game logic such as movement or
animation. The BehaviourTree root processes its top-level branches
round-robin under a Policy.

A composite exclusively owns its children. AddChild panics if a node already
has a parent, if the child would create a cycle, or if the composite has
already been processed: the shape of a tree is fixed once it starts running.

# Re-entry

  - Sequence and Selector advance at most one child per tick.
  - PrioritySelector and RandomSelector scan their cached order synchronously
    within one tick, so a higher priority branch is re-checked every tick.
    The order is computed on first use and kept until Reset.
  - Reset restores the cursor to the first child and resets every descendant.

Trees are not safe for concurrent use. A tree must be ticked by a single
caller.
*/
package tree
