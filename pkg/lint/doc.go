/*
Package lint applies the role contracts to Go source, before anything runs.

A type opts in with a directive on its declaration:

	//team:worker
	type EmailWorker struct{}

	//team:fetcher boundary=Ping
	type ProfileFetcher struct{ client *http.Client }

Analyzer plugs into go vet style drivers (singlechecker, multichecker,
gopls). CheckDir loads a directory tree and returns the violations as
values, for the teamwork CLI.
*/
package lint
