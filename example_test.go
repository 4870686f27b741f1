package jsonfetch_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rs/zerolog"

	"github.com/botsandus/jsonfetch"
)

func ExampleFetcher_FetchWithContext() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"example_param":%q}`, r.URL.Query().Get("example_param"))
	}))
	defer ts.Close()

	req, err := jsonfetch.NewRequest(ts.URL,
		jsonfetch.WithHeader("Accept-Language", "en"),
		jsonfetch.WithParam("example_param", "value"),
	)
	if err != nil {
		panic(err)
	}

	f := jsonfetch.New()
	ctx := jsonfetch.NewContext()

	data, err := f.FetchWithContext(ctx, req)
	if err != nil {
		panic(err)
	}

	fmt.Println(data)

	attempts, ok := jsonfetch.NumberOfAttemptsFromContext(ctx)
	if !ok {
		fmt.Println("unable to get attempt count")
	}

	fmt.Printf("It took %d attempt(s) to fetch\n", attempts)

	// Output:
	// map[example_param:value]
	// It took 1 attempt(s) to fetch
}

func ExampleError() {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	req, err := jsonfetch.NewRequest(ts.URL, jsonfetch.WithBackoff(10*time.Millisecond))
	if err != nil {
		panic(err)
	}

	f := jsonfetch.New()
	f.Logger = zerolog.Nop()

	_, err = f.Fetch(req)

	var fe *jsonfetch.Error
	if errors.As(err, &fe) {
		fmt.Println(fe.Kind, fe.StatusCode)
	}

	// Output:
	// http_status 404
}
