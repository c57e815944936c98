// Command enginecheck reports which version of each package.json dependency
// supports a given Node.js version.
package main

func main() {
	Execute()
}
