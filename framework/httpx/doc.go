// Package httpx defines the abstract request and response values exchanged
// at the dispatch engine's boundary.
//
// The engine never touches sockets or TLS: an adapter converts whatever the
// transport delivers into a *Request, and converts the *Response the
// dispatcher returns back onto the wire. This keeps route matching, container
// resolution and middleware execution testable without a server.
//
// # Request
//
//	req := httpx.NewRequest("GET", "/users/42").
//	    Set("Accept", "application/json").
//	    Set("Authorization", "Bearer "+token)
//
//	req.BearerToken()  // token
//	req.WantsJSON()    // true
//
//	// JSON body binding
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	err := req.Bind(&payload)
//
// # Response
//
//	httpx.JSON(200, data)          // application/json
//	httpx.Text(200, "pong")        // text/plain
//	httpx.HTML(404, "<h1>404</h1>")
//	httpx.NoContent()              // 204
//	httpx.Error(400, "bad input")  // {"message": "bad input"}
//	httpx.Unauthorized()           // 401 {"message": "Unauthenticated."}
//	httpx.NotFound()               // 404 {"message": "Not found."}
//	httpx.ServerError()            // 500 {"message": "Server Error."}
package httpx
