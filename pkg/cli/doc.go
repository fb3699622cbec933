// Package cli implements the apicheck command line.
//
// Commands:
//
//	apicheck check --old api/old.txt --new api/current.txt
//	apicheck check --module core/widget --new api/current.txt --format json
//	apicheck check --all --current-root build/api
//	apicheck format -w api/current.txt
//	apicheck update-baseline --module core/widget --new api/current.txt
//	apicheck update-baseline --old api/old.txt --new api/current.txt --accept api/accepted.txt
//	apicheck watch --old api/old.txt --new api/current.txt
//	apicheck serve --addr :8080
//	apicheck kinds --hide MemberAdded
//
// check and watch exit with checker.ErrIncompatible when any error survives
// the policy, the hide list and the accepted findings. Settings not given as
// flags come from the APICHECK_* environment, see package config.
package cli
