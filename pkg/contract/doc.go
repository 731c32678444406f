/*
Package contract implements the structural validator of the teamwork runtime.

A component is any concrete Go type submitted for a role. The validator checks it
against the role's contract from the registry and reports every violation found,
in a fixed detection order:

 1. method-name: exported method names and method count.
 2. param-shape / result-shape: one state argument (optionally preceded by a
    context.Context) and one of the role's result lists. Methods declared with
    WithBoundary are exempt.
 3. mutation: for immutable roles. The type-based strategy rejects pointer
    receivers and pointer state parameters. The structural-scan strategy parses
    the method source and rejects writes rooted at the receiver or the state.
 4. branching: if, switch, select and goto are rejected in Worker and
    Investigator methods. Boolean expressions are allowed.
 5. cross-role-call: declared dependencies (team struct tags or WithDependencies)
    on a kind the role may not call.

Source scans locate method bodies through the runtime symbol table, so they need
the source files on disk. When a file cannot be found the scan is skipped with a
warning and the type-based mutation rule is applied to that method instead.
*/
package contract
