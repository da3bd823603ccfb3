// print_model shows a trained model in human readable format.  It
// reads the word-topic dump files written during training, inverts
// them into per-topic word lists, and either prints a text summary or
// runs a Web server presenting an HTML table, depending on if -html is
// set.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/wangkuiyi/walklda/core/utils"
)

func main() {
	flagVocab := flag.String("vocab", "", "The vocabulary file")
	flagTopics := flag.Int("topics", 10, "Number of topics of the model")
	flagMaxWordsPerTopic := flag.Int("len", 50, "Max # tokens shown per topic")
	flagHtml := flag.String("html", "", "Display HTML instead generating file")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("Usage: print_model -vocab=... -topics=... <dump files>")
	}

	v := utils.LoadVocabOrDie(*flagVocab)
	rows, e := utils.LoadWordTopicDump(v.Len(), flag.Args()...)
	if e != nil {
		log.Fatalf("Cannot load word-topic dumps: %v", e)
	}
	descs := utils.DescribeTopics(rows, v, *flagTopics, *flagMaxWordsPerTopic)

	if len(*flagHtml) == 0 {
		for _, d := range descs {
			fmt.Printf("topic %d (%d):", d.Id, d.Nt)
			for _, t := range d.Tokens {
				fmt.Printf(" %s:%d", t.Word, t.Count)
			}
			fmt.Println()
		}
		return
	}

	tmpl, e := template.New("interpret").Parse(kTopicDescTemplate)
	if e != nil {
		log.Fatal("Cannot parse template interpret from kTemplate.")
	}
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if e := tmpl.Execute(w, descs); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
			log.Printf("Cannot execute HTML template: %v", e)
			return
		}
	})

	log.Printf("Listening on %s", *flagHtml)
	if e := http.ListenAndServe(*flagHtml, nil); e != nil {
		log.Fatalf("ListenAndServe failed: %v", e)
	}
}

const (
	kTopicDescTemplate = `<html>
<body style="background-color: #CFEDFB">
  <table>
    <thead style="background-color: #046293; color: white;">
      <tr>
        <td>ID</td>
        <td>Frequency</td>
        <td colspan=100>Words</td>
      </tr>
    </thead>
    <tbody style="background-color: #046293; color: white;">
    {{range .}}
      <tr>
        <td>{{.Id}}</td>
        <td>{{.Nt}}</td>
        {{range .Tokens}}
          <td style="background-color: #BFEFFF;">{{.Word}}</td>
          <td style="background-color: #00A0DC; color: white;">{{.Count}}</td>
        {{end}}
      </tr>
    {{end}}
    </tbody>
  </body>
</html>
`
)
