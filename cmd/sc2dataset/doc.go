// Command sc2dataset extracts analysis-ready wide-table datasets from
// StarCraft II replay observation manifests.
package main
