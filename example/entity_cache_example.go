package example

// // =================================================================================
// // EXEMPLO COMPLETO: Bot de Consulta Usando o Cache de Entidades
// // =================================================================================
// //
// // Este arquivo demonstra como construir um bot que responde perguntas sobre
// // servidores, canais e usuários usando o discordstate como base.
// //
// // Cenário: Você quer criar um bot que:
// // 1. Mantém um cache quente de guilds, canais, usuários, membros e mensagens
// // 2. Responde consultas direto do cache, sem tocar a API
// // 3. Busca via REST apenas quando a entidade ainda não está em cache
// // 4. Sobrevive a reinícios recarregando os snapshots do disco
// //
// // Arquitetura:
// // - discordstate: Fornece o cache, a ingestão de eventos e a persistência
// // - Seu repositório: Contém a lógica específica do seu bot

// import (
// 	"context"
// 	"fmt"
// 	"log"
// 	"time"

// 	"github.com/small-frappuccino/discordstate/pkg/client"
// 	"github.com/small-frappuccino/discordstate/pkg/state"
// )

// // ================================================================================
// // 1. CONFIGURAÇÃO DO CLIENTE
// // ================================================================================

// func buildClient(token string) (*client.Client, error) {
// 	cfg := client.DefaultConfig()
// 	cfg.AppName = "meu-bot"
// 	cfg.Token = token

// 	// Limites de cache por tipo de entidade. Quando um limite é atingido,
// 	// a entidade mais antiga (ordem de inserção) é descartada.
// 	cfg.MessageCacheLimit = 5000
// 	cfg.MemberCacheLimit = 20000

// 	// Snapshots periódicos para o SQLite; um snapshot final sempre roda no Close.
// 	cfg.PersistInterval = 30 * time.Minute

// 	return client.New(cfg)
// }

// // ================================================================================
// // 2. CONSULTAS DIRETO DO CACHE
// // ================================================================================

// // describeMessage monta uma descrição de uma mensagem usando apenas o cache.
// // Os resolvedores (Author, Channel, Guild) retornam (entidade, ok): ok=false
// // significa que a referência ainda não chegou pelo gateway.
// func describeMessage(st *state.State, messageID string) {
// 	msg, ok := st.Message(messageID)
// 	if !ok {
// 		fmt.Println("mensagem não está em cache")
// 		return
// 	}

// 	fmt.Printf("conteúdo: %s\n", msg.Content())

// 	if author, ok := msg.Author(); ok {
// 		fmt.Printf("autor: %s\n", author.DisplayName())
// 	}
// 	if ch, ok := msg.Channel(); ok {
// 		fmt.Printf("canal: #%s\n", ch.Name())
// 		// O resolvedor de guild passa pelo canal quando a própria mensagem
// 		// não carrega guild_id.
// 		if g, ok := msg.Guild(); ok {
// 			fmt.Printf("servidor: %s (%d membros)\n", g.Name(), g.MemberCount())
// 		}
// 	}
// }

// // listGuild mostra os canais e membros de um servidor já em cache.
// func listGuild(st *state.State, guildID string) {
// 	g, ok := st.Guild(guildID)
// 	if !ok {
// 		fmt.Println("servidor não está em cache")
// 		return
// 	}

// 	fmt.Printf("== %s ==\n", g.Name())
// 	for _, ch := range g.Channels() {
// 		fmt.Printf("  #%s (posição %d)\n", ch.Name(), ch.Position())
// 	}
// 	for _, m := range g.Members() {
// 		fmt.Printf("  %s\n", m.DisplayName())
// 	}
// }

// // ================================================================================
// // 3. BUSCA COM FALLBACK PARA A REST API
// // ================================================================================

// // lookupUser tenta o cache primeiro; se o usuário nunca apareceu em nenhum
// // evento, busca via REST e insere o resultado no cache. Chamadas concorrentes
// // para o mesmo usuário compartilham uma única requisição.
// func lookupUser(st *state.State, userID string) (*state.User, error) {
// 	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
// 	defer cancel()
// 	return st.FetchUser(ctx, userID)
// }

// // ================================================================================
// // 4. USO COMPLETO
// // ================================================================================

// func main() {
// 	c, err := buildClient("SEU_TOKEN_AQUI")
// 	if err != nil {
// 		log.Fatal(err)
// 	}

// 	// Open recarrega os snapshots do disco, conecta ao gateway e começa a
// 	// alimentar o cache com os eventos recebidos.
// 	if err := c.Open(); err != nil {
// 		log.Fatal(err)
// 	}
// 	defer c.Close()

// 	st := c.State()

// 	// Depois do READY os caches se enchem sozinhos; as consultas abaixo não
// 	// fazem nenhuma chamada de rede.
// 	time.Sleep(5 * time.Second)
// 	for _, g := range st.Guilds() {
// 		listGuild(st, g.ID())
// 	}

// 	// Contadores de acerto/erro por cache.
// 	stats := c.Stats()
// 	fmt.Printf("usuários em cache: %d (hits: %d, misses: %d)\n",
// 		stats.Users.Size, stats.Users.Hits, stats.Users.Misses)

// 	select {}
// }

// // =================================================================================
// // ALTERNATIVA: BOOTSTRAP COM UMA LINHA
// // =================================================================================
// //
// // Para o caso comum (configuração via settings.json + variáveis DISCORDSTATE_*,
// // token em DISCORDSTATE_TOKEN ou em ~/.local/bin/.env, bloqueia até Ctrl+C):

// func mainSimples() {
// 	if err := client.Run("meu-bot", "DISCORDSTATE_TOKEN"); err != nil {
// 		log.Fatal(err)
// 	}
// }
