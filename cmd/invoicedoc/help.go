package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedoc <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP invoice service")
	fmt.Fprintln(w, "  generate   Fill the invoice template once from the command line")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'invoicedoc help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by serve and generate.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Template:")
	fmt.Fprintln(w, "  -t, --template <s>          Template name or .docx path (default: invoice)")
	fmt.Fprintln(w, "      --template-dir <path>   Directory containing templates/<name>.docx")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Storage:")
	fmt.Fprintln(w, "      --store <s>             Driver: none, file, minio (default: file)")
	fmt.Fprintln(w, "      --data-dir <path>       Directory for the file driver (default: data)")
	fmt.Fprintln(w, "      --latest-name <s>       Name of the most recent document")
	fmt.Fprintln(w, "      --key-by-invoice        Also keep one copy per invoice ID")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <path>         Config file (or INVOICEDOC_CONFIG)")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Debug logging")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedoc serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP invoice service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /api/invoices               Generate from a JSON field mapping")
	fmt.Fprintln(w, "  GET  /api/invoices/latest        Download the most recent document")
	fmt.Fprintln(w, "  GET  /api/invoices/latest/pdf    Download it as PDF")
	fmt.Fprintln(w, "  GET  /healthz, /readyz")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>           Listen address (default: :8080)")
	fmt.Fprintln(w, "      --strict-preview        Fail generation when the preview fails")
	fmt.Fprintln(w, "      --no-pdf                Disable PDF export")
	fmt.Fprintln(w, "  -w, --workers <n>           Concurrent PDF browsers (0 = auto)")
	fmt.Fprintln(w, "      --pdf-timeout <d>       PDF generation timeout (e.g., 30s)")
	fmt.Fprintln(w, "      --log-format <s>        Log format: text, json")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: invoicedoc generate -f key=value ... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill the invoice template once and write the document.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fields:")
	fmt.Fprintln(w, "  -f, --field <key=value>     Invoice field (repeatable): personName, eventID,")
	fmt.Fprintln(w, "                              eventName, eventDate, invoiceDate, salary,")
	fmt.Fprintln(w, "                              travelExpenses, carExpenses, parkingExpenses")
	fmt.Fprintln(w, "  -j, --json <path>           JSON object of fields (- reads stdin)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Document path (default: invoice-<eventID>.docx)")
	fmt.Fprintln(w, "      --preview <path>        Also write the HTML preview")
	fmt.Fprintln(w, "      --pdf <path>            Also write a PDF rendering (needs Chrome)")
	fmt.Fprintln(w, "      --strict-preview        Fail when the preview fails")
	fmt.Fprintln(w, "      --pdf-timeout <d>       PDF generation timeout (e.g., 30s)")
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general, 2 usage or invalid fields, 3 I/O, 4 browser, 5 template")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "generate":
		printGenerateUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: invoicedoc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: invoicedoc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
