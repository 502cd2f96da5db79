// Command knox is the command-line front-end for the vault engine.
package main

func main() {
	Execute()
}
