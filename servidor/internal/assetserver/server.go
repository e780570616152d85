package assetserver

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"DisplayForge/shared/protocol"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// errOutsideRoot indica um caminho que sairia do resource pack.
var errOutsideRoot = errors.New("caminho fora da raiz")

// Server entrega arquivos de um resource pack a clientes websocket.
type Server struct {
	Root string
	// Version, se definida, recusa pedidos de outra versão do jogo.
	Version string

	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex

	served atomic.Int64
	missed atomic.Int64
}

func New(root, version string) *Server {
	return &Server{
		Root:    root,
		Version: version,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP aceita a conexão websocket e atende pedidos até ela fechar.
// Cada pedido roda em sua própria goroutine; as escritas são serializadas por conexão.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Servidor] Erro no upgrade: %v", err)
		return
	}
	s.register(conn)
	defer s.unregister(conn)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		typ, payload, err := protocol.Decode(message)
		if err != nil || typ != protocol.TypeAssetRequest {
			log.Printf("[Servidor] Mensagem inválida de %s (tipo %d): %v", conn.RemoteAddr(), typ, err)
			continue
		}
		req, err := protocol.DecodeRequest(payload)
		if err != nil {
			log.Printf("[Servidor] Pedido malformado de %s: %v", conn.RemoteAddr(), err)
			continue
		}

		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Servidor] Recuperado de pânico ao atender %s: %v", req.Path, r)
				}
			}()
			resp := s.Handle(req)
			if err := s.writeSafe(conn, protocol.EncodeResponse(resp)); err != nil {
				log.Printf("[Servidor] Erro ao responder %s: %v", conn.RemoteAddr(), err)
			}
		}()
	}
}

// Handle responde um pedido lendo o arquivo do resource pack.
func (s *Server) Handle(req protocol.AssetRequest) protocol.AssetResponse {
	resp := protocol.AssetResponse{ID: req.ID}

	if s.Version != "" && req.Version != "" && req.Version != s.Version {
		resp.Status = protocol.StatusError
		resp.Message = fmt.Sprintf("versão %s não disponível (servindo %s)", req.Version, s.Version)
		return resp
	}

	full, err := s.resolve(req.Path)
	if err != nil {
		s.missed.Add(1)
		resp.Status = protocol.StatusNotFound
		resp.Message = err.Error()
		return resp
	}

	data, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.missed.Add(1)
		resp.Status = protocol.StatusNotFound
		resp.Message = req.Path
	case err != nil:
		log.Printf("[Servidor] ERRO ao ler %s: %v", full, err)
		resp.Status = protocol.StatusError
		resp.Message = err.Error()
	default:
		s.served.Add(1)
		resp.Data = data
	}
	return resp
}

// resolve converte o caminho do pedido em um arquivo dentro de Root.
func (s *Server) resolve(p string) (string, error) {
	if p == "" || strings.Contains(p, "\\") || path.IsAbs(p) {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", errOutsideRoot, p)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

func (s *Server) register(conn *websocket.Conn) {
	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	n := len(s.clients)
	s.mu.Unlock()
	log.Printf("[Servidor] Cliente registrado: %s (%d conectados)", conn.RemoteAddr(), n)
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	lock, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()

	if ok {
		lock.Lock()
		conn.Close()
		lock.Unlock()
	}
	log.Printf("[Servidor] Cliente desregistrado: %s", conn.RemoteAddr())
}

// writeSafe garante que apenas uma goroutine escreva em cada conexão.
func (s *Server) writeSafe(conn *websocket.Conn, data []byte) error {
	s.mu.Lock()
	lock, ok := s.clients[conn]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("cliente não encontrado")
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// Clients retorna quantas conexões estão ativas.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stats retorna quantos arquivos foram servidos e quantos não existiam.
func (s *Server) Stats() (served, missed int64) {
	return s.served.Load(), s.missed.Load()
}
