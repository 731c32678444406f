/*
Package ports defines the driven ports (interfaces) of the teamwork runtime.

These interfaces decouple the validator from external implementations, allowing
validation results to be shared through various backends.

# Key Interfaces

  - ResultCache: stores validation results keyed by component shape and source digest,
    so that expensive source scans are not repeated across processes.
*/
package ports
