/*
Package domain contains the shared vocabulary of the teamwork runtime.

It defines the role kinds and their contracts, the violation records produced by
the structural validator, the error taxonomy and the interfaces components of each
role implement. The package is kept pure and free of I/O so that registry,
validator, container and executor can all depend on it.

# Key Entities

  - Kind / RoleDefinition: the structural contract of a role (State, Fetcher, Worker,
    Investigator, Error, Delegator or a custom kind).
  - Violation / ValidationResult: the outcome of checking a component against a role.
  - Ref: a (kind, name) pair identifying a container binding.
  - Delegator, Investigator: the typed entry points used by the executor.
  - LifecycleHooks: observability callbacks emitted by container and executor.
*/
package domain
