// Command invoicectl runs the invoice guards offline against JSON files.
package main

func main() {
	Execute()
}
