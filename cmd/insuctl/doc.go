// Command insuctl runs collections against the analysis portal and manages
// the local job database.
package main
